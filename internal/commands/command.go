package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeNewList Type = "newlist"
	TypeToggle  Type = "toggle"
	TypeShow    Type = "show"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
	List  string
}

type NewListArgs struct {
	Name string
}

type ToggleArgs struct {
	List string
}

type ShowArgs struct {
	List string
}

type Command struct {
	Type    Type
	Raw     string
	Add     *AddArgs
	NewList *NewListArgs
	Toggle  *ToggleArgs
	Show    *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeNewList:
		return parseNewList(input, args)
	case TypeToggle:
		return parseToggle(input, args)
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// parseAdd accepts "add <title>" and "add <title> to <list>". The last "to"
// token splits title from list so titles containing "to" still parse.
func parseAdd(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	titleParts := args
	listParts := []string{}
	for i := len(args) - 1; i >= 0; i-- {
		if strings.EqualFold(args[i], "to") {
			titleParts = args[:i]
			listParts = args[i+1:]
			break
		}
	}
	title := strings.TrimSpace(strings.Join(titleParts, " "))
	list := strings.TrimSpace(strings.Join(listParts, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title, List: list}}, nil
}

func parseNewList(raw string, args []string) (Command, error) {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "newlist requires a name"}
	}
	return Command{Type: TypeNewList, Raw: raw, NewList: &NewListArgs{Name: name}}, nil
}

func parseToggle(raw string, args []string) (Command, error) {
	list := strings.TrimSpace(strings.Join(args, " "))
	if list == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "toggle requires a list name"}
	}
	return Command{Type: TypeToggle, Raw: raw, Toggle: &ToggleArgs{List: list}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	list := strings.TrimSpace(strings.Join(args, " "))
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{List: list}}, nil
}
