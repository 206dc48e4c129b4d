package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/traypop/internal/anim"
	"github.com/sandeepkv93/traypop/internal/session"
	"github.com/sandeepkv93/traypop/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.eng != nil {
		return waitForFrameCmd(m.eng.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case tea.FocusMsg:
		return m.showPopup(), nil
	case tea.BlurMsg:
		return m.deactivatePopup(), nil
	case EditorBlurMsg:
		return m.handleEditorBlur(typed), nil
	case FrameMsg:
		next := m.applyFrame(typed.Event)
		if next.eng != nil {
			return next, waitForFrameCmd(next.eng.C())
		}
		return next, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}

	if !m.Visible {
		switch keyStr {
		case m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		case "enter":
			return m.showPopup(), nil
		}
		return m, nil
	}

	if m.Palette.Active {
		return m.handlePaletteKey(msg), nil
	}
	// The editor owns the keyboard while a session is live. Its handler
	// consumes enter and esc before the global bindings below can see
	// them, so esc inside an edit never doubles as hide-popup.
	if m.Editor.Active {
		return m.handleEditorKey(msg)
	}

	switch keyStr {
	case m.Keys.Palette:
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.Hide:
		return m.deactivatePopup(), nil
	case "j", "down":
		m = m.moveCursor(1)
		return m, nil
	case "k", "up":
		m = m.moveCursor(-1)
		return m, nil
	case m.Keys.AddTask:
		return m.beginAddTask(), nil
	case m.Keys.NewList:
		return m.beginNewList(), nil
	case m.Keys.Rename:
		return m.beginRename(), nil
	case m.Keys.Collapse, "enter":
		if vs := m.selectedList(); vs != nil && m.Cursor.Task == -1 {
			return m.toggleCollapsed(vs.Name), nil
		}
		return m, nil
	case m.Keys.Done:
		return m.toggleSelectedDone(), nil
	case m.Keys.Delete:
		return m.deleteSelected(), nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return "bye\n"
	}
	if !m.Visible {
		return "traypop hidden — refocus or press enter to reopen\n"
	}

	sidePane := views.RenderCommandPalette(m.Palette.Active, m.commandInput.View())
	if m.HelpVisible {
		if sidePane != "" {
			sidePane += "\n"
		}
		sidePane += m.renderHelpView()
	}

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	open, hidden := m.taskCounts()
	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("traypop | %d lists | %d open | %d hidden", len(m.Lists), open, hidden),
		Body:       views.RenderListPanel(m.listPanelData()),
		SidePane:   sidePane,
		StatusLine: status,
		Footer: fmt.Sprintf("keys: %s add | %s list | %s rename | %s fold | space done | %s del | / cmd | %s help | %s hide | %s quit",
			m.Keys.AddTask, m.Keys.NewList, m.Keys.Rename, m.Keys.Collapse, m.Keys.Delete, m.Keys.Help, m.Keys.Hide, m.Keys.Quit),
	})
}

func (m Model) listPanelData() views.ListPanelData {
	creatingList := m.Editor.Active && m.Editor.Handle.Kind() == session.KindListCreate
	data := views.ListPanelData{
		CreatingList:   creatingList,
		ListEditorView: m.editorInput.View(),
	}
	for i, vs := range m.Lists {
		target := m.Editor.Handle.Target()
		kind := m.Editor.Handle.Kind()
		section := views.ListSectionData{
			Name:        vs.Name,
			Collapsed:   vs.Collapsed,
			Selected:    i == m.Cursor.List && m.Cursor.Task == -1,
			Renaming:    m.Editor.Active && kind == session.KindListRename && target.ListName == vs.Name,
			Creating:    m.Editor.Active && kind == session.KindTaskCreate && target.ListName == vs.Name,
			EditorView:  m.editorInput.View(),
			DoneCount:   vs.DoneCount,
			TotalCount:  len(vs.Tasks),
			VisibleRows: vs.VisibleRows,
		}
		for j, task := range vs.Tasks {
			row := views.TaskRowData{
				Title:    task.Title,
				Done:     task.Done,
				Selected: i == m.Cursor.List && j == m.Cursor.Task,
			}
			if m.Editor.Active && kind == session.KindTaskRename && target.TaskID == task.ID {
				row.Editing = true
				row.EditorView = m.editorInput.View()
			}
			section.Tasks = append(section.Tasks, row)
		}
		data.Sections = append(data.Sections, section)
	}
	return data
}

func (m Model) taskCounts() (open, hidden int) {
	for _, vs := range m.Lists {
		for _, task := range vs.Tasks {
			if !task.Done {
				open++
				if vs.Collapsed {
					hidden++
				}
			}
		}
	}
	return open, hidden
}

func waitForFrameCmd(ch <-chan anim.FrameEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return FrameMsg{Event: ev}
	}
}
