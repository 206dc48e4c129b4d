package update

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sandeepkv93/traypop/internal/anim"
)

// rebuildFromStore is the full-rebuild path: throw the rendered list area
// away and reconstruct it from persisted state. Any live edit session is
// canceled first, through the gate, because the rebuild destroys the row the
// editor lives in and the stale blur that follows must find a finalized
// session.
func (m Model) rebuildFromStore() Model {
	if m.Sessions.Active() {
		m.Sessions.TryCancel(m.Sessions.ActiveHandle())
	}
	m = m.closeEditor()
	if m.eng != nil {
		m.eng.CancelAll()
	}

	lists, tasks, err := m.repo.ListAll(context.Background())
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("load failed: %v", err), IsError: true}
		return m
	}

	next := make([]*ListViewState, 0, len(lists))
	byList := make(map[string]*ListViewState, len(lists))
	for _, list := range lists {
		vs := &ListViewState{
			Name:        list.Name,
			Collapsed:   list.Collapsed,
			VisibleRows: -1,
		}
		next = append(next, vs)
		byList[list.Name] = vs
	}
	for _, task := range tasks {
		vs, ok := byList[task.ListName]
		if !ok {
			continue
		}
		vs.Tasks = append(vs.Tasks, TaskViewState{ID: task.ID, Title: task.Title, Done: task.Done})
		if task.Done {
			vs.DoneCount++
		}
	}

	m.Lists = next
	m = m.clampCursor()
	return m
}

// toggleCollapsed flips one list's collapsed state in place, without a
// rebuild, so the fold transition can play. Order matters: persist first,
// abort on failure, only then touch the view.
func (m Model) toggleCollapsed(listName string) Model {
	vs := m.findList(listName)
	if vs == nil {
		// The list left the view under us (a rebuild raced this toggle).
		return m
	}

	// Read the live rendered state, not a value captured at render time:
	// the list may have been toggled repeatedly since the last rebuild.
	newCollapsed := !vs.Collapsed

	if err := m.repo.SetListCollapsed(context.Background(), vs.Name, newCollapsed); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("collapse not saved: %v", err), IsError: true}
		return m
	}

	// An edit inside a list that is folding away cannot continue silently.
	if newCollapsed && m.Sessions.TargetsList(vs.Name) {
		m.Sessions.TryCancel(m.Sessions.ActiveHandle())
		m = m.closeEditor()
	}

	vs.Collapsed = newCollapsed
	if m.eng != nil && m.animDuration > 0 {
		if newCollapsed {
			vs.VisibleRows = len(vs.Tasks)
		} else {
			vs.VisibleRows = 0
		}
		_ = m.eng.Begin(anim.Transition{
			ListName:   vs.Name,
			Collapsing: newCollapsed,
			Duration:   m.animDuration,
			Generation: m.Generation,
		})
	} else {
		vs.VisibleRows = -1
	}

	if newCollapsed && m.Cursor.List < len(m.Lists) && m.Lists[m.Cursor.List] == vs {
		m.Cursor.Task = -1
	}
	return m
}

// applyFrame advances one fold transition. Frames from a previous showing or
// for a list that no longer exists are dropped.
func (m Model) applyFrame(ev anim.FrameEvent) Model {
	if ev.Generation != m.Generation {
		return m
	}
	vs := m.findList(ev.ListName)
	if vs == nil {
		return m
	}
	if ev.Done {
		vs.VisibleRows = -1
		return m
	}
	total := float64(len(vs.Tasks))
	if ev.Collapsing {
		vs.VisibleRows = int(math.Round((1 - ev.Progress) * total))
	} else {
		vs.VisibleRows = int(math.Round(ev.Progress * total))
	}
	return m
}

// toggleSelectedDone is the second in-place patch path: flip one task's done
// state without rebuilding. Same order as toggleCollapsed: store first.
func (m Model) toggleSelectedDone() Model {
	vs := m.selectedList()
	task := m.selectedTask()
	if vs == nil || task == nil {
		return m
	}

	newDone := !task.Done
	var completedAt *time.Time
	if newDone {
		now := time.Now().UTC()
		completedAt = &now
	}
	if err := m.repo.SetTaskDone(context.Background(), task.ID, newDone, completedAt); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("change not saved: %v", err), IsError: true}
		return m
	}

	task.Done = newDone
	if newDone {
		vs.DoneCount++
		m.Status = StatusBar{Text: "task done"}
	} else {
		vs.DoneCount--
		m.Status = StatusBar{Text: "task reopened"}
	}
	return m
}

func (m Model) deleteSelected() Model {
	ctx := context.Background()
	if task := m.selectedTask(); task != nil {
		if err := m.repo.DeleteTask(ctx, task.ID); err != nil {
			m.LastError = err
			m.Status = StatusBar{Text: fmt.Sprintf("delete failed: %v", err), IsError: true}
			return m
		}
		m.Status = StatusBar{Text: "task deleted"}
		return m.rebuildFromStore()
	}
	if vs := m.selectedList(); vs != nil {
		if err := m.repo.DeleteList(ctx, vs.Name); err != nil {
			m.LastError = err
			m.Status = StatusBar{Text: fmt.Sprintf("delete failed: %v", err), IsError: true}
			return m
		}
		m.Status = StatusBar{Text: fmt.Sprintf("list deleted: %s", vs.Name)}
		return m.rebuildFromStore()
	}
	return m
}

// moveCursor walks the flattened rows: each list header, then its tasks when
// the list is expanded.
func (m Model) moveCursor(delta int) Model {
	type pos struct {
		list int
		task int
	}
	rows := make([]pos, 0)
	for i, vs := range m.Lists {
		rows = append(rows, pos{list: i, task: -1})
		if !vs.Collapsed {
			for j := range vs.Tasks {
				rows = append(rows, pos{list: i, task: j})
			}
		}
	}
	if len(rows) == 0 {
		return m
	}

	current := 0
	for idx, p := range rows {
		if p.list == m.Cursor.List && p.task == m.Cursor.Task {
			current = idx
			break
		}
	}
	current += delta
	if current < 0 {
		current = 0
	}
	if current >= len(rows) {
		current = len(rows) - 1
	}
	m.Cursor = Cursor{List: rows[current].list, Task: rows[current].task}
	return m
}

func (m Model) clampCursor() Model {
	if len(m.Lists) == 0 {
		m.Cursor = Cursor{List: 0, Task: -1}
		return m
	}
	if m.Cursor.List >= len(m.Lists) {
		m.Cursor.List = len(m.Lists) - 1
		m.Cursor.Task = -1
	}
	vs := m.Lists[m.Cursor.List]
	if vs.Collapsed || m.Cursor.Task >= len(vs.Tasks) {
		m.Cursor.Task = -1
	}
	return m
}
