package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

// Repository is the durable source of truth for lists and tasks. All writes
// are synchronous: a nil error means the change is on disk.
type Repository interface {
	ListAll(ctx context.Context) ([]List, []Task, error)

	CreateList(ctx context.Context, in List) error
	GetList(ctx context.Context, name string) (List, error)
	RenameList(ctx context.Context, oldName, newName string) error
	SetListCollapsed(ctx context.Context, name string, collapsed bool) error
	DeleteList(ctx context.Context, name string) error

	CreateTask(ctx context.Context, in Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	RenameTask(ctx context.Context, id, title string) error
	SetTaskDone(ctx context.Context, id string, done bool, completedAt *time.Time) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error)
}
