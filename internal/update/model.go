package update

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sandeepkv93/traypop/internal/anim"
	"github.com/sandeepkv93/traypop/internal/session"
	"github.com/sandeepkv93/traypop/internal/storage"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	AddTask  string
	NewList  string
	Rename   string
	Collapse string
	Done     string
	Delete   string
	Palette  string
	Help     string
	Hide     string
	Quit     string
}

// TaskViewState mirrors one rendered task row.
type TaskViewState struct {
	ID    string
	Title string
	Done  bool
}

// ListViewState is the UI-facing mirror of one persisted list. Collapsed
// tracks the latest in-place toggle, not the value captured at the last
// rebuild; the store stays the source of truth and every full rebuild
// re-reads it.
type ListViewState struct {
	Name      string
	Collapsed bool
	DoneCount int
	// VisibleRows caps rendered task rows while a collapse/expand
	// transition plays. -1 means steady state (all rows when expanded).
	VisibleRows int
	Tasks       []TaskViewState
}

// Cursor addresses the selected row. Task == -1 selects the list header.
type Cursor struct {
	List int
	Task int
}

type EditorState struct {
	Active bool
	Handle session.Handle
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	repo storage.Repository
	eng  *anim.Engine

	Visible bool
	// Generation invalidates asynchronous signals from a prior showing of
	// the popup. Bumped on every hidden-to-shown transition.
	Generation uint64

	Lists  []*ListViewState
	Cursor Cursor

	Sessions *session.Controller
	Editor   EditorState

	Palette     CommandPaletteState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	editorInput  textinput.Model
	commandInput textinput.Model
	helpModel    help.Model

	animDuration time.Duration
	newID        func() string
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// EditorBlurMsg reports that keyboard focus left the inline editor. It
// captures both the session handle and the generation current when the field
// was created; either being stale makes the message a no-op.
type EditorBlurMsg struct {
	Handle     session.Handle
	Generation uint64
	Value      string
}

type FrameMsg struct {
	Event anim.FrameEvent
}

func NewModel(repo storage.Repository) Model {
	return NewModelWithConfig(repo, nil, DefaultRuntimeConfig())
}

func NewModelWithEngine(repo storage.Repository, eng *anim.Engine) Model {
	return NewModelWithConfig(repo, eng, DefaultRuntimeConfig())
}

func NewModelWithConfig(repo storage.Repository, eng *anim.Engine, cfg RuntimeConfig) Model {
	m := Model{
		repo:         repo,
		eng:          eng,
		Visible:      !cfg.StartHidden,
		Generation:   1,
		Cursor:       Cursor{List: 0, Task: -1},
		Sessions:     session.NewController(),
		Keys:         defaultKeyMap(),
		animDuration: time.Duration(cfg.AnimDurationMS) * time.Millisecond,
		newID:        defaultNewID,
	}
	m.initInputs()
	m = m.rebuildFromStore()
	return m
}

func defaultKeyMap() GlobalKeyMap {
	return GlobalKeyMap{
		AddTask:  "a",
		NewList:  "N",
		Rename:   "r",
		Collapse: "z",
		Done:     " ",
		Delete:   "d",
		Palette:  "/",
		Help:     "?",
		Hide:     "esc",
		Quit:     "q",
	}
}

func (m *Model) initInputs() {
	editor := textinput.New()
	editor.Placeholder = "title"
	editor.CharLimit = 200
	editor.Width = 32
	m.editorInput = editor

	command := textinput.New()
	command.Placeholder = "add <title> to <list>"
	command.CharLimit = 200
	command.Width = 36
	m.commandInput = command

	m.helpModel = help.New()
}

func (m *Model) findList(name string) *ListViewState {
	for _, vs := range m.Lists {
		if vs.Name == name {
			return vs
		}
	}
	return nil
}

func (m Model) selectedList() *ListViewState {
	if m.Cursor.List < 0 || m.Cursor.List >= len(m.Lists) {
		return nil
	}
	return m.Lists[m.Cursor.List]
}

func (m Model) selectedTask() *TaskViewState {
	vs := m.selectedList()
	if vs == nil || m.Cursor.Task < 0 || m.Cursor.Task >= len(vs.Tasks) {
		return nil
	}
	return &vs.Tasks[m.Cursor.Task]
}
