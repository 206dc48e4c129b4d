package model

import (
	"strings"
	"time"
)

type Task struct {
	ID          string
	ListName    string
	Title       string
	Done        bool
	Position    int
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func NewTask(id, listName, title string, position int, now time.Time) (Task, error) {
	t := Task{
		ID:        strings.TrimSpace(id),
		ListName:  strings.TrimSpace(listName),
		Title:     strings.TrimSpace(title),
		Position:  position,
		CreatedAt: now,
	}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(t.ListName) == "" {
		return ErrMissingList
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

func (t Task) Complete(now time.Time) Task {
	t.Done = true
	t.CompletedAt = &now
	return t
}

func (t Task) Reopen() Task {
	t.Done = false
	t.CompletedAt = nil
	return t
}
