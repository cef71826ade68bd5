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

func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, due_at, recurring, repeat_interval, status, series_id, created_at
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

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error) {
	query := `SELECT id, title, description, due_at, recurring, repeat_interval, status, series_id, created_at FROM tasks`
	args := make([]any, 0, 3)
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY due_at ASC, created_at ASC`
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

func (r *SQLiteRepository) GetSeries(ctx context.Context, seriesID string) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, due_at, recurring, repeat_interval, status, series_id, created_at
		FROM tasks WHERE series_id = ? ORDER BY due_at ASC, created_at ASC`, seriesID)
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

func (r *SQLiteRepository) SaveTask(ctx context.Context, in Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, due_at, recurring, repeat_interval, status, series_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			due_at = excluded.due_at,
			recurring = excluded.recurring,
			repeat_interval = excluded.repeat_interval,
			status = excluded.status,
			series_id = excluded.series_id`,
		in.ID, in.Title, in.Description, mustTime(in.DueAt), boolInt(in.Recurring),
		in.Interval, in.Status, nullString(in.SeriesID), mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) AppendHistory(ctx context.Context, in HistoryEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO history (id, task_id, old_status, new_status, change_type, changed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.TaskID, nullString(in.OldStatus), in.NewStatus, in.ChangeType, mustTime(in.ChangedAt),
	)
	return err
}

func (r *SQLiteRepository) ListHistory(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error) {
	query := `SELECT id, task_id, old_status, new_status, change_type, changed_at FROM history`
	args := make([]any, 0, 3)
	if filter.TaskID != "" {
		query += ` WHERE task_id = ?`
		args = append(args, filter.TaskID)
	}
	query += ` ORDER BY changed_at DESC, id DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HistoryEntry, 0)
	for rows.Next() {
		entry, scanErr := scanHistory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
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

func nullString(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
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

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (Task, error) {
	var out Task
	var due, created string
	var recurring int
	var series sql.NullString
	if err := s.Scan(&out.ID, &out.Title, &out.Description, &due, &recurring, &out.Interval, &out.Status, &series, &created); err != nil {
		return Task{}, err
	}
	dueAt, err := parseRequiredTime(due)
	if err != nil {
		return Task{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Task{}, err
	}
	out.DueAt = dueAt
	out.CreatedAt = createdAt
	out.Recurring = recurring != 0
	if series.Valid {
		out.SeriesID = series.String
	}
	return out, nil
}

func scanHistory(s scanner) (HistoryEntry, error) {
	var out HistoryEntry
	var changed string
	var old sql.NullString
	if err := s.Scan(&out.ID, &out.TaskID, &old, &out.NewStatus, &out.ChangeType, &changed); err != nil {
		return HistoryEntry{}, err
	}
	changedAt, err := parseRequiredTime(changed)
	if err != nil {
		return HistoryEntry{}, err
	}
	out.ChangedAt = changedAt
	if old.Valid {
		out.OldStatus = old.String
	}
	return out, nil
}
