// Package session owns the lifecycle of inline-edit sessions. Several
// independent signals (confirm key, cancel key, field blur, popup
// deactivation) can each try to finish the same edit; the controller is the
// single gate that lets exactly one of them through.
package session

import "strings"

type Kind string

const (
	KindTaskCreate Kind = "task_create"
	KindTaskRename Kind = "task_rename"
	KindListCreate Kind = "list_create"
	KindListRename Kind = "list_rename"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindTaskCreate, KindTaskRename, KindListCreate, KindListRename:
		return true
	default:
		return false
	}
}

// Target identifies what an edit applies to. TaskID is empty for list edits
// and for task creation; ListName is empty only for list creation.
type Target struct {
	ListName string
	TaskID   string
}

type editSession struct {
	kind       Kind
	target     Target
	generation uint64
	submitted  bool
}

// Handle is what signal handlers keep across their asynchronous lifetime.
// A zero Handle is inert: every Try call on it reports false.
type Handle struct {
	s *editSession
}

func (h Handle) Valid() bool { return h.s != nil }

func (h Handle) Kind() Kind {
	if h.s == nil {
		return ""
	}
	return h.s.kind
}

func (h Handle) Target() Target {
	if h.s == nil {
		return Target{}
	}
	return h.s.target
}

func (h Handle) Generation() uint64 {
	if h.s == nil {
		return 0
	}
	return h.s.generation
}

// Controller tracks at most one live session. It is owned by the popup model
// and only ever touched from the single event-processing goroutine.
type Controller struct {
	active *editSession
}

func NewController() *Controller {
	return &Controller{}
}

// Begin starts a new session, finalizing any live one as a cancel first. The
// caller passes the view generation current at field creation; stale async
// signals compare against it later.
func (c *Controller) Begin(kind Kind, target Target, generation uint64) Handle {
	if c.active != nil && !c.active.submitted {
		c.active.submitted = true
	}
	s := &editSession{
		kind:       kind,
		target:     target,
		generation: generation,
	}
	c.active = s
	return Handle{s: s}
}

// TryCommit finalizes the session and runs commit exactly once. The submitted
// flag flips before the side effect runs, so a reentrant or racing signal for
// the same session observes a finalized session and no-ops. Returns false
// without running commit when the session is already finalized or superseded.
func (c *Controller) TryCommit(h Handle, commit func() error) (bool, error) {
	if !c.owns(h) {
		return false, nil
	}
	h.s.submitted = true
	c.active = nil
	if commit == nil {
		return true, nil
	}
	return true, commit()
}

// TryCancel finalizes the session with no side effects. Same guard as
// TryCommit: exactly one of the two succeeds per session.
func (c *Controller) TryCancel(h Handle) bool {
	if !c.owns(h) {
		return false
	}
	h.s.submitted = true
	c.active = nil
	return true
}

func (c *Controller) owns(h Handle) bool {
	return h.s != nil && !h.s.submitted && c.active == h.s
}

func (c *Controller) Active() bool {
	return c.active != nil
}

func (c *Controller) ActiveHandle() Handle {
	if c.active == nil {
		return Handle{}
	}
	return Handle{s: c.active}
}

// TargetsList reports whether the live session edits something inside the
// named list, either the list itself or one of its tasks.
func (c *Controller) TargetsList(listName string) bool {
	if c.active == nil {
		return false
	}
	return strings.EqualFold(c.active.target.ListName, listName)
}
