package storage

import "time"

type List struct {
	Name      string
	Collapsed bool
	Position  int
	CreatedAt time.Time
}

type Task struct {
	ID          string
	ListName    string
	Title       string
	Done        bool
	Position    int
	CreatedAt   time.Time
	CompletedAt *time.Time
}

type TaskListFilter struct {
	ListName string
	Done     *bool
	Limit    int
	Offset   int
}
