// Package taskstore implements task operations on top of a service.Sheet.
// The worksheet is the system of record: nothing is cached between calls.
package taskstore

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"taskbot/internal/service"
)

// NewTask holds the fields supplied by the user when adding a task.
// DueDate is raw input in either accepted format.
type NewTask struct {
	Name     string
	Note     string
	DueDate  string
	Assignee string
}

// Store is the task façade over a worksheet.
type Store struct {
	sheet  service.Sheet
	schema service.Schema
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the time zone that defines "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithLogger sets the logger for schema maintenance.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store. Defaults: time.Now, time.Local, slog.Default().
func New(sheet service.Sheet, schema service.Schema, opts ...Option) *Store {
	s := &Store{
		sheet:  sheet,
		schema: schema,
		now:    time.Now,
		loc:    time.Local,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current time in the store's location.
func (s *Store) Today() time.Time {
	return s.now().In(s.loc)
}

// EnsureSchema checks row 1 against the schema headers. On any mismatch,
// including a blank row, it clears the whole sheet and writes the header.
// Existing rows are lost in that case; reset reports whether it happened.
func (s *Store) EnsureSchema(ctx context.Context) (reset bool, err error) {
	header, err := s.sheet.Header(ctx)
	if err != nil {
		return false, s.remoteFailure("read header", err)
	}
	if slices.Equal(header, s.schema.HeaderRow()) {
		return false, nil
	}

	s.logger.Warn("sheet header mismatch, resetting sheet", "found", header)
	if err := s.sheet.Clear(ctx); err != nil {
		return false, s.remoteFailure("clear sheet", err)
	}
	if err := s.sheet.AppendRow(ctx, s.schema.HeaderRow()); err != nil {
		return false, s.remoteFailure("write header", err)
	}
	s.logger.Info("header row written")
	return true, nil
}

// Add validates the due date and appends a pending task.
// An invalid date returns ErrInvalidDateFormat without touching the sheet.
func (s *Store) Add(ctx context.Context, in NewTask) (service.Task, error) {
	due, err := NormalizeDate(in.DueDate)
	if err != nil {
		return service.Task{}, err
	}

	task := service.Task{
		Name:     in.Name,
		Note:     in.Note,
		DueDate:  due,
		Assignee: in.Assignee,
		Status:   service.StatusPending,
	}
	if err := s.sheet.AppendRow(ctx, s.schema.RowValues(task)); err != nil {
		return service.Task{}, s.remoteFailure("append task", err)
	}
	return task, nil
}

// ListPending returns pending tasks in sheet order.
func (s *Store) ListPending(ctx context.Context) ([]service.Task, error) {
	tasks, err := s.all(ctx, "list tasks")
	if err != nil {
		return nil, err
	}
	var pending []service.Task
	for _, t := range tasks {
		if t.Status == service.StatusPending {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

// ListDueToday returns pending tasks whose due date is today.
// Stored dates in either accepted format match.
func (s *Store) ListDueToday(ctx context.Context) ([]service.Task, error) {
	pending, err := s.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	today := s.Today().Format(ISODate)

	var due []service.Task
	for _, t := range pending {
		if comparableDate(t.DueDate) == today {
			due = append(due, t)
		}
	}
	return due, nil
}

// Complete marks the first pending task named name (case-insensitive) as done.
// Returns ErrTaskNotFound when no pending task matches.
func (s *Store) Complete(ctx context.Context, name string) (service.Task, error) {
	tasks, err := s.all(ctx, "find task")
	if err != nil {
		return service.Task{}, err
	}

	want := strings.TrimSpace(name)
	for _, t := range tasks {
		if t.Status != service.StatusPending || !strings.EqualFold(strings.TrimSpace(t.Name), want) {
			continue
		}
		if err := s.sheet.UpdateCell(ctx, t.Row, service.ColStatus, s.schema.Done); err != nil {
			return service.Task{}, s.remoteFailure("complete task", err)
		}
		t.Status = service.StatusDone
		return t, nil
	}
	return service.Task{}, fmt.Errorf("%w: %s", service.ErrTaskNotFound, name)
}

func (s *Store) all(ctx context.Context, op string) ([]service.Task, error) {
	rows, err := s.sheet.Rows(ctx)
	if err != nil {
		return nil, s.remoteFailure(op, err)
	}
	tasks := make([]service.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, s.schema.TaskFromRow(r))
	}
	return tasks, nil
}

// remoteFailure makes sure a sheet error carries ErrRemoteStore. Callers
// log it at the command boundary.
func (s *Store) remoteFailure(op string, err error) error {
	if service.KindOf(err) == service.ErrRemoteStore {
		return err
	}
	return &service.StoreError{Op: op, Reason: service.ReasonAPI, Err: err}
}
