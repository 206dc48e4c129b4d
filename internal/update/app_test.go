package update

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/traypop/internal/storage"
)

func setupRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "traypop-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func seedLists(t *testing.T, repo storage.Repository) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := repo.CreateList(ctx, storage.List{Name: "Inbox", Position: 0, CreatedAt: created}); err != nil {
		t.Fatalf("seed Inbox: %v", err)
	}
	if err := repo.CreateList(ctx, storage.List{Name: "Work", Position: 1, CreatedAt: created}); err != nil {
		t.Fatalf("seed Work: %v", err)
	}
	if err := repo.CreateTask(ctx, storage.Task{ID: "task-42", ListName: "Work", Title: "file report", Position: 0, CreatedAt: created}); err != nil {
		t.Fatalf("seed task: %v", err)
	}
}

// newTestModel builds a model over a seeded temp sqlite store, with
// animations disabled and deterministic task ids.
func newTestModel(t *testing.T) (Model, storage.Repository) {
	t.Helper()
	repo := setupRepo(t)
	seedLists(t, repo)
	cfg := DefaultRuntimeConfig()
	cfg.AnimDurationMS = 0
	m := NewModelWithConfig(repo, nil, cfg)
	nextID := 0
	m.newID = func() string {
		nextID++
		return fmt.Sprintf("test-id-%d", nextID)
	}
	return m, repo
}

func pressKey(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func typeRunes(t *testing.T, m Model, text string) Model {
	t.Helper()
	return pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func taskTitles(t *testing.T, repo storage.Repository, listName string) []string {
	t.Helper()
	tasks, err := repo.ListTasks(context.Background(), storage.TaskListFilter{ListName: listName})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestNewModelLoadsStore(t *testing.T) {
	m, _ := newTestModel(t)
	if len(m.Lists) != 2 || m.Lists[0].Name != "Inbox" || m.Lists[1].Name != "Work" {
		t.Fatalf("unexpected lists: %#v", m.Lists)
	}
	if len(m.Lists[1].Tasks) != 1 || m.Lists[1].Tasks[0].ID != "task-42" {
		t.Fatalf("unexpected Work tasks: %#v", m.Lists[1].Tasks)
	}
	if !m.Visible || m.Generation != 1 {
		t.Fatalf("unexpected initial visibility state: visible=%v gen=%d", m.Visible, m.Generation)
	}
}

func TestInlineCreateConfirmThenDeactivation(t *testing.T) {
	m, repo := newTestModel(t)

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if !m.Editor.Active {
		t.Fatal("expected editor active after add key")
	}
	m = typeRunes(t, m, "pay rent")
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// The popup deactivates before the queue drains; this second
	// termination signal must not create a second task.
	m = pressKey(t, m, tea.BlurMsg{})

	titles := taskTitles(t, repo, "Inbox")
	if len(titles) != 1 || titles[0] != "pay rent" {
		t.Fatalf("expected exactly one created task, got %v", titles)
	}
	if m.Visible {
		t.Fatal("deactivation should hide the popup")
	}
}

func TestDeactivationCommitsNonEmptyEditor(t *testing.T) {
	m, repo := newTestModel(t)

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	m = typeRunes(t, m, "water plants")
	m = pressKey(t, m, tea.BlurMsg{})

	titles := taskTitles(t, repo, "Inbox")
	if len(titles) != 1 || titles[0] != "water plants" {
		t.Fatalf("expected deactivation to commit, got %v", titles)
	}
}

func TestDeactivationCancelsEmptyEditor(t *testing.T) {
	m, repo := newTestModel(t)

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	m = pressKey(t, m, tea.BlurMsg{})

	if titles := taskTitles(t, repo, "Inbox"); len(titles) != 0 {
		t.Fatalf("empty editor should cancel on deactivation, got %v", titles)
	}
}

func TestEscInsideEditorDoesNotHidePopup(t *testing.T) {
	m, _ := newTestModel(t)

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	m = typeRunes(t, m, "half typed")
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.Editor.Active {
		t.Fatal("esc should close the editor")
	}
	if !m.Visible {
		t.Fatal("esc inside an editor must not hide the popup")
	}

	// A second esc, with no editor consuming it, hides the popup.
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Visible {
		t.Fatal("esc outside an editor should hide the popup")
	}
}

func TestRenameCancelKeepsStoredName(t *testing.T) {
	m, repo := newTestModel(t)

	// Move to Work's task and start a rename.
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}) // Inbox -> Work header
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}) // Work header -> task-42
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if !m.Editor.Active {
		t.Fatal("expected rename editor active")
	}
	handle := m.Editor.Handle

	m = typeRunes(t, m, " draft")
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	task, err := repo.GetTask(context.Background(), "task-42")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Title != "file report" {
		t.Fatalf("cancel must leave the stored name unchanged, got %q", task.Title)
	}

	// A focus-loss signal for the finalized session is a no-op.
	m = pressKey(t, m, EditorBlurMsg{Handle: handle, Generation: handle.Generation(), Value: "file report draft"})
	task, err = repo.GetTask(context.Background(), "task-42")
	if err != nil {
		t.Fatalf("get task after stale blur: %v", err)
	}
	if task.Title != "file report" {
		t.Fatalf("stale blur mutated the store: %q", task.Title)
	}
}

func TestDuplicateBlurSignalsCreateOneTask(t *testing.T) {
	m, repo := newTestModel(t)

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	m = typeRunes(t, m, "call dentist")
	blur := EditorBlurMsg{
		Handle:     m.Editor.Handle,
		Generation: m.Editor.Handle.Generation(),
		Value:      m.editorInput.Value(),
	}

	m = pressKey(t, m, blur)
	m = pressKey(t, m, blur)

	titles := taskTitles(t, repo, "Inbox")
	if len(titles) != 1 || titles[0] != "call dentist" {
		t.Fatalf("expected one task from duplicated blur, got %v", titles)
	}
}

func TestHiddenPopupReshowBumpsGeneration(t *testing.T) {
	m, _ := newTestModel(t)
	gen := m.Generation

	m = pressKey(t, m, tea.BlurMsg{})
	if m.Visible {
		t.Fatal("expected hidden popup")
	}
	m = pressKey(t, m, tea.FocusMsg{})
	if !m.Visible {
		t.Fatal("expected popup shown on focus")
	}
	if m.Generation != gen+1 {
		t.Fatalf("expected generation bump, got %d -> %d", gen, m.Generation)
	}
}

func TestStaleGenerationBlurDiscarded(t *testing.T) {
	m, repo := newTestModel(t)

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	m = typeRunes(t, m, "stale thing")

	// A blur whose captured generation predates the current showing is
	// discarded before the session gate is even consulted: the live
	// session stays live.
	m = pressKey(t, m, EditorBlurMsg{
		Handle:     m.Editor.Handle,
		Generation: m.Generation - 1,
		Value:      m.editorInput.Value(),
	})
	if !m.Editor.Active || !m.Sessions.Active() {
		t.Fatal("stale-generation blur must not finalize the session")
	}
	if titles := taskTitles(t, repo, "Inbox"); len(titles) != 0 {
		t.Fatalf("stale-generation blur mutated the store: %v", titles)
	}

	// A blur from a field created before a hide/show cycle is likewise
	// dead, even though it holds a then-valid handle.
	staleBlur := EditorBlurMsg{
		Handle:     m.Editor.Handle,
		Generation: m.Editor.Handle.Generation(),
		Value:      "stale thing",
	}
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEsc}) // cancels the editor
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEsc}) // hides
	m = pressKey(t, m, tea.FocusMsg{})
	m = pressKey(t, m, staleBlur)
	if titles := taskTitles(t, repo, "Inbox"); len(titles) != 0 {
		t.Fatalf("blur from a previous showing mutated the store: %v", titles)
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	next := updated.(Model)
	if !next.Quitting {
		t.Fatal("expected quitting flag")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestViewShowsListsAndCounts(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()
	for _, want := range []string{"Inbox", "Work", "file report", "2 lists", "1 open"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected view to contain %q:\n%s", want, out)
		}
	}
}

func TestHiddenViewIsMinimal(t *testing.T) {
	m, _ := newTestModel(t)
	m = pressKey(t, m, tea.BlurMsg{})
	out := m.View()
	if strings.Contains(out, "Inbox") {
		t.Fatalf("hidden popup should not render lists:\n%s", out)
	}
}
