package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/traypop/internal/commands"
	"github.com/sandeepkv93/traypop/internal/model"
	"github.com/sandeepkv93/traypop/internal/storage"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.Palette.Active = false
		m.Palette.Input = ""
		return m
	}

	rebuild := false
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			listName := a.List
			if listName == "" {
				vs := m.selectedList()
				if vs == nil {
					return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no list selected; use add <title> to <list>"}
				}
				listName = vs.Name
			}
			target := m.findList(listName)
			if target == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown list: %s", listName)}
			}
			now := time.Now().UTC()
			task, taskErr := model.NewTask(m.newID(), target.Name, a.Title, len(target.Tasks), now)
			if taskErr != nil {
				return commands.Result{}, taskErr
			}
			if createErr := m.repo.CreateTask(context.Background(), storage.Task{
				ID:        task.ID,
				ListName:  task.ListName,
				Title:     task.Title,
				Position:  task.Position,
				CreatedAt: task.CreatedAt,
			}); createErr != nil {
				return commands.Result{}, createErr
			}
			rebuild = true
			return commands.Result{Message: fmt.Sprintf("task added: %s", task.Title)}, nil
		},
		NewList: func(a commands.NewListArgs) (commands.Result, error) {
			now := time.Now().UTC()
			list, listErr := model.NewList(a.Name, len(m.Lists), now)
			if listErr != nil {
				return commands.Result{}, listErr
			}
			if createErr := m.repo.CreateList(context.Background(), storage.List{
				Name:      list.Name,
				Position:  list.Position,
				CreatedAt: list.CreatedAt,
			}); createErr != nil {
				return commands.Result{}, createErr
			}
			rebuild = true
			return commands.Result{Message: fmt.Sprintf("list created: %s", list.Name)}, nil
		},
		Toggle: func(a commands.ToggleArgs) (commands.Result, error) {
			m = m.toggleCollapsed(a.List)
			return commands.Result{Message: fmt.Sprintf("toggled: %s", a.List)}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			if a.List == "" {
				return commands.Result{Message: fmt.Sprintf("%d lists", len(m.Lists))}, nil
			}
			for i, vs := range m.Lists {
				if strings.EqualFold(vs.Name, a.List) {
					m.Cursor = Cursor{List: i, Task: -1}
					return commands.Result{Message: fmt.Sprintf("selected: %s", vs.Name)}, nil
				}
			}
			return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown list: %s", a.List)}
		},
	})

	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: res.Message}
	if rebuild {
		m = m.rebuildFromStore()
	}
	return m
}
