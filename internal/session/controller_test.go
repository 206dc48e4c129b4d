package session

import (
	"errors"
	"testing"
)

func TestExactlyOneFinalization(t *testing.T) {
	c := NewController()
	h := c.Begin(KindTaskCreate, Target{ListName: "Inbox"}, 1)

	commits := 0
	ok, err := c.TryCommit(h, func() error {
		commits++
		return nil
	})
	if !ok || err != nil {
		t.Fatalf("first commit: ok=%v err=%v", ok, err)
	}

	// Every later termination signal for the same session must no-op,
	// whatever its flavor.
	if ok, _ := c.TryCommit(h, func() error { commits++; return nil }); ok {
		t.Fatal("second commit should be rejected")
	}
	if c.TryCancel(h) {
		t.Fatal("cancel after commit should be rejected")
	}
	if commits != 1 {
		t.Fatalf("expected exactly one commit side effect, got %d", commits)
	}
}

func TestCancelBlocksLaterCommit(t *testing.T) {
	c := NewController()
	h := c.Begin(KindTaskRename, Target{ListName: "Work", TaskID: "task-42"}, 3)

	if !c.TryCancel(h) {
		t.Fatal("first cancel should succeed")
	}
	ok, err := c.TryCommit(h, func() error {
		t.Fatal("commit side effect must not run after cancel")
		return nil
	})
	if ok || err != nil {
		t.Fatalf("commit after cancel: ok=%v err=%v", ok, err)
	}
}

func TestBeginSupersedesLiveSession(t *testing.T) {
	c := NewController()
	old := c.Begin(KindListCreate, Target{}, 1)
	fresh := c.Begin(KindTaskCreate, Target{ListName: "Inbox"}, 1)

	// The superseded handle is dead even though its holder never saw a
	// termination signal.
	if ok, _ := c.TryCommit(old, func() error {
		t.Fatal("superseded session must not commit")
		return nil
	}); ok {
		t.Fatal("superseded commit should be rejected")
	}

	if ok, _ := c.TryCommit(fresh, nil); !ok {
		t.Fatal("fresh session should commit")
	}
}

func TestCommitErrorStillFinalizes(t *testing.T) {
	c := NewController()
	h := c.Begin(KindListRename, Target{ListName: "Work"}, 2)

	boom := errors.New("disk full")
	ok, err := c.TryCommit(h, func() error { return boom })
	if !ok || !errors.Is(err, boom) {
		t.Fatalf("expected accepted commit with error, ok=%v err=%v", ok, err)
	}
	if c.Active() {
		t.Fatal("failed commit should still clear the active session")
	}
	if c.TryCancel(h) {
		t.Fatal("session should be finalized despite commit error")
	}
}

func TestZeroHandleIsInert(t *testing.T) {
	c := NewController()
	var h Handle
	if h.Valid() {
		t.Fatal("zero handle should be invalid")
	}
	if ok, _ := c.TryCommit(h, nil); ok {
		t.Fatal("zero handle commit should be rejected")
	}
	if c.TryCancel(h) {
		t.Fatal("zero handle cancel should be rejected")
	}
}

func TestTargetsList(t *testing.T) {
	c := NewController()
	if c.TargetsList("Inbox") {
		t.Fatal("no session, no target")
	}
	c.Begin(KindTaskCreate, Target{ListName: "Inbox"}, 1)
	if !c.TargetsList("Inbox") {
		t.Fatal("expected session targeting Inbox")
	}
	if c.TargetsList("Work") {
		t.Fatal("session should not target Work")
	}
}

func TestHandleAccessors(t *testing.T) {
	c := NewController()
	h := c.Begin(KindTaskRename, Target{ListName: "Work", TaskID: "task-7"}, 9)
	if h.Kind() != KindTaskRename {
		t.Fatalf("unexpected kind %q", h.Kind())
	}
	if h.Target().TaskID != "task-7" {
		t.Fatalf("unexpected target %#v", h.Target())
	}
	if h.Generation() != 9 {
		t.Fatalf("unexpected generation %d", h.Generation())
	}
	if !KindTaskRename.IsValid() || Kind("bogus").IsValid() {
		t.Fatal("kind validity check broken")
	}
}
