package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/traypop/internal/model"
	"github.com/sandeepkv93/traypop/internal/session"
	"github.com/sandeepkv93/traypop/internal/storage"
)

func (m Model) beginAddTask() Model {
	vs := m.selectedList()
	if vs == nil {
		m.Status = StatusBar{Text: "create a list first", IsError: true}
		return m
	}
	if vs.Collapsed {
		// Adding into a hidden list would put the editor somewhere the
		// user cannot see. Expand first.
		m = m.toggleCollapsed(vs.Name)
	}
	return m.beginEditor(session.KindTaskCreate, session.Target{ListName: vs.Name}, "")
}

func (m Model) beginNewList() Model {
	return m.beginEditor(session.KindListCreate, session.Target{}, "")
}

func (m Model) beginRename() Model {
	if task := m.selectedTask(); task != nil {
		vs := m.selectedList()
		return m.beginEditor(session.KindTaskRename,
			session.Target{ListName: vs.Name, TaskID: task.ID}, task.Title)
	}
	if vs := m.selectedList(); vs != nil {
		return m.beginEditor(session.KindListRename,
			session.Target{ListName: vs.Name}, vs.Name)
	}
	return m
}

func (m Model) beginEditor(kind session.Kind, target session.Target, initial string) Model {
	m.Editor.Handle = m.Sessions.Begin(kind, target, m.Generation)
	m.Editor.Active = true
	m.editorInput.SetValue(initial)
	m.editorInput.CursorEnd()
	m.editorInput.Focus()
	return m
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// Consumed here: enter never reaches the collapse-toggle binding.
		return m.finalizeSession(m.Editor.Handle, m.editorInput.Value()), nil
	case "esc":
		// Consumed here: esc never falls through to hide-popup.
		next := m
		if next.Sessions.TryCancel(next.Editor.Handle) {
			next.Status = StatusBar{Text: "edit canceled"}
		}
		return next.closeEditor(), nil
	case "tab":
		// Focus leaves the field. The termination is delivered as a
		// message rather than applied inline, so it races with other
		// termination signals exactly like a real blur callback would.
		blur := EditorBlurMsg{
			Handle:     m.Editor.Handle,
			Generation: m.Editor.Handle.Generation(),
			Value:      m.editorInput.Value(),
		}
		return m, func() tea.Msg { return blur }
	}
	var cmd tea.Cmd
	m.editorInput, cmd = m.editorInput.Update(msg)
	return m, cmd
}

// handleEditorBlur finishes an edit whose field lost focus. A blur from a
// previous showing of the popup carries a stale generation and is discarded
// outright; the field it refers to no longer exists.
func (m Model) handleEditorBlur(msg EditorBlurMsg) Model {
	if msg.Generation != m.Generation {
		return m
	}
	return m.finalizeSession(msg.Handle, msg.Value)
}

// finalizeSession is the single funnel for every termination signal: commit
// when the field holds text, cancel when it is empty, both through the
// controller's idempotent gate. Duplicate or late signals for an already
// finalized session fall out at the gate and change nothing.
func (m Model) finalizeSession(h session.Handle, value string) Model {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if m.Sessions.TryCancel(h) {
			m = m.closeEditor()
		}
		return m
	}

	kind := h.Kind()
	target := h.Target()
	ok, err := m.Sessions.TryCommit(h, func() error {
		return m.applyEdit(kind, target, trimmed)
	})
	if !ok {
		return m
	}
	m = m.closeEditor()
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: statusForEdit(kind, trimmed)}
	return m.rebuildFromStore()
}

// applyEdit performs the store write for a committed session. It runs inside
// the controller gate, after the session is already finalized.
func (m Model) applyEdit(kind session.Kind, target session.Target, value string) error {
	ctx := context.Background()
	now := time.Now().UTC()

	switch kind {
	case session.KindTaskCreate:
		position := 0
		if vs := m.findList(target.ListName); vs != nil {
			position = len(vs.Tasks)
		}
		task, err := model.NewTask(m.newID(), target.ListName, value, position, now)
		if err != nil {
			return err
		}
		return m.repo.CreateTask(ctx, storage.Task{
			ID:        task.ID,
			ListName:  task.ListName,
			Title:     task.Title,
			Position:  task.Position,
			CreatedAt: task.CreatedAt,
		})
	case session.KindTaskRename:
		return m.repo.RenameTask(ctx, target.TaskID, value)
	case session.KindListCreate:
		list, err := model.NewList(value, len(m.Lists), now)
		if err != nil {
			return err
		}
		return m.repo.CreateList(ctx, storage.List{
			Name:      list.Name,
			Position:  list.Position,
			CreatedAt: list.CreatedAt,
		})
	case session.KindListRename:
		return m.repo.RenameList(ctx, target.ListName, value)
	default:
		return fmt.Errorf("update: unknown session kind %q", kind)
	}
}

func statusForEdit(kind session.Kind, value string) string {
	switch kind {
	case session.KindTaskCreate:
		return fmt.Sprintf("task added: %s", value)
	case session.KindTaskRename:
		return "task renamed"
	case session.KindListCreate:
		return fmt.Sprintf("list created: %s", value)
	case session.KindListRename:
		return "list renamed"
	default:
		return "done"
	}
}

func (m Model) closeEditor() Model {
	m.Editor.Active = false
	m.Editor.Handle = session.Handle{}
	m.editorInput.Blur()
	m.editorInput.SetValue("")
	return m
}

// showPopup handles the hidden-to-shown transition: bump the generation so
// callbacks scheduled against the previous showing die, then rebuild from
// the store.
func (m Model) showPopup() Model {
	if m.Visible {
		return m
	}
	m.Visible = true
	m.Generation++
	return m.rebuildFromStore()
}

// deactivatePopup is the lowest-priority termination path: the whole popup
// lost focus. It cannot rely on running after (or before) a field blur for
// the same user action, so it finalizes through the same gate instead of
// checking whether a session "looks" active.
func (m Model) deactivatePopup() Model {
	h := m.Sessions.ActiveHandle()
	m = m.finalizeSession(h, m.editorInput.Value())
	m.Visible = false
	m.Palette.Active = false
	m.commandInput.Blur()
	return m
}
