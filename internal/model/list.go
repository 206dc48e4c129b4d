package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyListName = errors.New("model: empty list name")
	ErrEmptyTitle    = errors.New("model: empty task title")
	ErrMissingList   = errors.New("model: task without a list")
	ErrMissingID     = errors.New("model: task without an id")
)

// List is one collapsible group of tasks. Name doubles as the storage key.
type List struct {
	Name      string
	Collapsed bool
	Position  int
	CreatedAt time.Time
}

func NewList(name string, position int, now time.Time) (List, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return List{}, ErrEmptyListName
	}
	return List{
		Name:      trimmed,
		Position:  position,
		CreatedAt: now,
	}, nil
}

func (l List) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyListName
	}
	return nil
}
