package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]List, []Task, error) {
	lists, err := r.listLists(ctx)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := r.ListTasks(ctx, TaskListFilter{})
	if err != nil {
		return nil, nil, err
	}
	return lists, tasks, nil
}

func (r *SQLiteRepository) listLists(ctx context.Context) ([]List, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, collapsed, position, created_at
		FROM lists ORDER BY position ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]List, 0)
	for rows.Next() {
		item, scanErr := scanList(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateList(ctx context.Context, in List) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lists (name, collapsed, position, created_at)
		VALUES (?, ?, ?, ?)`,
		in.Name, boolInt(in.Collapsed), in.Position, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetList(ctx context.Context, name string) (List, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, collapsed, position, created_at
		FROM lists WHERE name = ?`, name)
	item, err := scanList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return List{}, ErrNotFound
		}
		return List{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) RenameList(ctx context.Context, oldName, newName string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE lists SET name = ? WHERE name = ?`, newName, oldName)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) SetListCollapsed(ctx context.Context, name string, collapsed bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE lists SET collapsed = ? WHERE name = ?`, boolInt(collapsed), name)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteList(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lists WHERE name = ?`, name)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, list_name, title, done, position, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.ListName, in.Title, boolInt(in.Done), in.Position,
		mustTime(in.CreatedAt), nullTime(in.CompletedAt),
	)
	return err
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, list_name, title, done, position, created_at, completed_at
		FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) RenameTask(ctx context.Context, id, title string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) SetTaskDone(ctx context.Context, id string, done bool, completedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET done = ?, completed_at = ? WHERE id = ?`,
		boolInt(done), nullTime(completedAt), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error) {
	query := `SELECT id, list_name, title, done, position, created_at, completed_at FROM tasks`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.ListName != "" {
		clauses = append(clauses, "list_name = ?")
		args = append(args, filter.ListName)
	}
	if filter.Done != nil {
		clauses = append(clauses, "done = ?")
		args = append(args, boolInt(*filter.Done))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY list_name ASC, position ASC, created_at ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanList(s scanner) (List, error) {
	var out List
	var collapsed int
	var created string
	if err := s.Scan(&out.Name, &collapsed, &out.Position, &created); err != nil {
		return List{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return List{}, err
	}
	out.Collapsed = collapsed == 1
	out.CreatedAt = createdAt
	return out, nil
}

func scanTask(s scanner) (Task, error) {
	var out Task
	var done int
	var created string
	var completed sql.NullString
	if err := s.Scan(&out.ID, &out.ListName, &out.Title, &done, &out.Position, &created, &completed); err != nil {
		return Task{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Task{}, err
	}
	completedAt, err := parseNullableTime(completed)
	if err != nil {
		return Task{}, err
	}
	out.Done = done == 1
	out.CreatedAt = createdAt
	out.CompletedAt = completedAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}
