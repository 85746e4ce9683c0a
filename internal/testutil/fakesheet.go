// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sync"

	"taskbot/internal/service"
)

// ErrInjected is a convenience error for failure injection.
var ErrInjected = &service.StoreError{Op: "fake", Reason: service.ReasonNetwork, Err: errors.New("connection reset")}

// FakeSheet is an in-memory implementation of service.Sheet for testing.
// Index 0 of the grid is row 1.
type FakeSheet struct {
	mu   sync.RWMutex
	grid [][]string

	// Mutations counts successful Clear, AppendRow and UpdateCell calls.
	Mutations int

	// Error injection for testing
	HeaderErr     error
	ClearErr      error
	AppendRowErr  error
	RowsErr       error
	UpdateCellErr error
}

// NewFakeSheet creates an empty sheet.
func NewFakeSheet() *FakeSheet {
	return &FakeSheet{}
}

// NewFakeSheetWithSchema creates a sheet holding only the schema header.
func NewFakeSheetWithSchema(schema service.Schema) *FakeSheet {
	f := &FakeSheet{}
	f.grid = append(f.grid, copyRow(schema.HeaderRow()))
	return f
}

// SetRow replaces a whole row (1-based), growing the grid as needed.
func (f *FakeSheet) SetRow(row int, values ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.grid) < row {
		f.grid = append(f.grid, nil)
	}
	f.grid[row-1] = copyRow(values)
}

// AddTask appends a task row using the schema's status labels.
func (f *FakeSheet) AddTask(schema service.Schema, t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grid = append(f.grid, schema.RowValues(t))
}

// Grid returns a copy of every row, header included.
func (f *FakeSheet) Grid() [][]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([][]string, len(f.grid))
	for i, r := range f.grid {
		out[i] = copyRow(r)
	}
	return out
}

// Cell returns a single value (1-based), or "" when out of range.
func (f *FakeSheet) Cell(row, col int) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if row < 1 || row > len(f.grid) {
		return ""
	}
	return service.Row{Values: f.grid[row-1]}.Cell(col)
}

// Header implements service.Sheet.
func (f *FakeSheet) Header(ctx context.Context) ([]string, error) {
	if f.HeaderErr != nil {
		return nil, f.HeaderErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.grid) == 0 {
		return []string{}, nil
	}
	return copyRow(f.grid[0]), nil
}

// Clear implements service.Sheet.
func (f *FakeSheet) Clear(ctx context.Context) error {
	if f.ClearErr != nil {
		return f.ClearErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grid = nil
	f.Mutations++
	return nil
}

// AppendRow implements service.Sheet.
func (f *FakeSheet) AppendRow(ctx context.Context, values []string) error {
	if f.AppendRowErr != nil {
		return f.AppendRowErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	// Appending goes after the last non-blank row, like the Sheets API.
	last := len(f.grid)
	for last > 0 && isBlank(f.grid[last-1]) {
		last--
	}
	f.grid = append(f.grid[:last], copyRow(values))
	f.Mutations++
	return nil
}

// Rows implements service.Sheet.
func (f *FakeSheet) Rows(ctx context.Context) ([]service.Row, error) {
	if f.RowsErr != nil {
		return nil, f.RowsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	var rows []service.Row
	for i := service.FirstTaskRow - 1; i < len(f.grid); i++ {
		values := make([]string, service.NumColumns)
		copy(values, f.grid[i])
		rows = append(rows, service.Row{Number: i + 1, Values: values})
	}
	return rows, nil
}

// UpdateCell implements service.Sheet.
func (f *FakeSheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	if f.UpdateCellErr != nil {
		return f.UpdateCellErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.grid) < row {
		f.grid = append(f.grid, nil)
	}
	for len(f.grid[row-1]) < col {
		f.grid[row-1] = append(f.grid[row-1], "")
	}
	f.grid[row-1][col-1] = value
	f.Mutations++
	return nil
}

func copyRow(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func isBlank(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}
