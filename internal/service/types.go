package service

// Column positions of the task schema (1-based).
const (
	ColName = iota + 1
	ColNote
	ColDueDate
	ColAssignee
	ColStatus

	// NumColumns is the width of the task schema.
	NumColumns = ColStatus
)

// FirstTaskRow is the first row that holds a task; row 1 is the header.
const FirstTaskRow = 2

// Status is the lifecycle state of a task.
type Status int

const (
	// StatusUnknown marks a status cell holding neither label.
	StatusUnknown Status = iota
	StatusPending
	StatusDone
)

// Row is one raw worksheet row.
type Row struct {
	Number int
	Values []string
}

// Cell returns the value at a 1-based column, or "" if the row is short.
func (r Row) Cell(col int) string {
	if col < 1 || col > len(r.Values) {
		return ""
	}
	return r.Values[col-1]
}

// Task represents a single task row.
type Task struct {
	Row      int
	Name     string
	Note     string
	DueDate  string // YYYY-MM-DD when written by this program
	Assignee string
	Status   Status
}

// Schema holds the header and status labels written to the sheet.
// Labels are locale-specific; the column order is not.
type Schema struct {
	Headers [NumColumns]string
	Pending string
	Done    string
}

// HeaderRow returns the header labels as a row.
func (s Schema) HeaderRow() []string {
	return s.Headers[:]
}

// StatusLabel returns the label written for a status.
func (s Schema) StatusLabel(st Status) string {
	switch st {
	case StatusPending:
		return s.Pending
	case StatusDone:
		return s.Done
	default:
		return ""
	}
}

// ParseStatus maps a status cell to a Status.
func (s Schema) ParseStatus(label string) Status {
	switch label {
	case s.Pending:
		return StatusPending
	case s.Done:
		return StatusDone
	default:
		return StatusUnknown
	}
}

// TaskFromRow decodes a worksheet row.
func (s Schema) TaskFromRow(r Row) Task {
	return Task{
		Row:      r.Number,
		Name:     r.Cell(ColName),
		Note:     r.Cell(ColNote),
		DueDate:  r.Cell(ColDueDate),
		Assignee: r.Cell(ColAssignee),
		Status:   s.ParseStatus(r.Cell(ColStatus)),
	}
}

// RowValues encodes a task in column order.
func (s Schema) RowValues(t Task) []string {
	return []string{t.Name, t.Note, t.DueDate, t.Assignee, s.StatusLabel(t.Status)}
}
