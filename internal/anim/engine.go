// Package anim interpolates collapse/expand transitions for list panels. The
// engine runs off the event loop and feeds frame events back into it through
// a channel; the update loop turns each frame into a message. Frames carry the
// view generation they were started under so a popup that was hidden and
// re-shown mid-flight discards them.
package anim

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidDuration = errors.New("anim: invalid duration")
	ErrEngineStopped   = errors.New("anim: engine stopped")
)

type FrameEvent struct {
	ListName   string
	Collapsing bool
	Progress   float64
	Generation uint64
	Done       bool
}

type Transition struct {
	ListName   string
	Collapsing bool
	Duration   time.Duration
	Generation uint64
}

type running struct {
	transition Transition
	startedAt  time.Time
}

type Engine struct {
	mu       sync.Mutex
	active   map[string]running
	out      chan FrameEvent
	wakeup   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	interval time.Duration
	dropped  uint64
}

func NewEngine(bufferSize int, frameInterval time.Duration) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if frameInterval <= 0 {
		frameInterval = 33 * time.Millisecond
	}
	return &Engine{
		active:   make(map[string]running),
		out:      make(chan FrameEvent, bufferSize),
		wakeup:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		interval: frameInterval,
	}
}

func (e *Engine) C() <-chan FrameEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Begin starts a transition for a list, replacing any in-flight transition on
// the same list.
func (e *Engine) Begin(t Transition) error {
	if t.Duration <= 0 {
		return ErrInvalidDuration
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}
	e.active[t.ListName] = running{transition: t, startedAt: time.Now()}
	e.signalWakeup()
	return nil
}

func (e *Engine) Cancel(listName string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.active, listName)
}

// CancelAll drops every in-flight transition. Called when a full rebuild
// supersedes the animated view.
func (e *Engine) CancelAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = make(map[string]running)
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		if !e.hasActive() {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		select {
		case now := <-ticker.C:
			for _, frame := range e.tick(now) {
				select {
				case e.out <- frame:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			return
		}
	}
}

func (e *Engine) tick(now time.Time) []FrameEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]FrameEvent, 0, len(e.active))
	for name, r := range e.active {
		elapsed := now.Sub(r.startedAt)
		progress := float64(elapsed) / float64(r.transition.Duration)
		done := progress >= 1
		if done {
			progress = 1
			delete(e.active, name)
		}
		out = append(out, FrameEvent{
			ListName:   r.transition.ListName,
			Collapsing: r.transition.Collapsing,
			Progress:   progress,
			Generation: r.transition.Generation,
			Done:       done,
		})
	}
	return out
}

func (e *Engine) hasActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active) > 0
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}
