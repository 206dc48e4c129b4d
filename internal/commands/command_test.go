package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent to Inbox", TypeAdd},
		{"newlist Errands", TypeNewList},
		{"toggle Work", TypeToggle},
		{"show Inbox", TypeShow},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddSplitsTitleAndList(t *testing.T) {
	cmd, err := Parse("/add reply to mail to Work")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Title != "reply to mail" || cmd.Add.List != "Work" {
		t.Fatalf("unexpected add args: %#v", cmd.Add)
	}

	cmd, err = Parse("add water plants")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Title != "water plants" || cmd.Add.List != "" {
		t.Fatalf("unexpected add args without list: %#v", cmd.Add)
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEmptyAndInvalid(t *testing.T) {
	if _, err := Parse("   "); err == nil {
		t.Fatal("expected empty input error")
	}
	var ce *CommandError
	_, err := Parse("toggle")
	if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
		t.Fatalf("expected invalid argument error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs to Inbox")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Title != "write docs" || a.List != "Inbox" {
				t.Fatalf("unexpected args: %#v", a)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("unexpected execute result: %#v", res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("toggle Work")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected handler missing error, got %v", err)
	}
}
