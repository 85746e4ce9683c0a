// Package service defines the backend-agnostic interface for sheet operations.
package service

import "context"

// Sheet defines row-level operations on the worksheet that stores tasks.
// All Google Sheets API calls go through this interface.
// The task store never imports the Google SDK directly.
//
// Row and column numbers are 1-based, as in the spreadsheet UI.
type Sheet interface {
	// Header returns the values of row 1.
	// Returns an empty slice if the row is blank.
	Header(ctx context.Context) ([]string, error)

	// Clear removes every value from the worksheet.
	Clear(ctx context.Context) error

	// AppendRow writes values into the first empty row after the table.
	AppendRow(ctx context.Context, values []string) error

	// Rows returns rows 2..N in sheet order.
	// Short rows are padded to the header width.
	Rows(ctx context.Context) ([]Row, error)

	// UpdateCell overwrites a single cell.
	UpdateCell(ctx context.Context, row, col int, value string) error
}
