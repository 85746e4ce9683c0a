// Package exitcode defines the outcome codes shared by chat commands and the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad arguments, an invalid date or an unknown task.
	UserError = 1

	// AuthError indicates missing configuration or rejected credentials.
	AuthError = 2

	// BackendError indicates a spreadsheet API or network failure.
	BackendError = 3

	// InternalError indicates an unclassified failure or a recovered panic.
	InternalError = 4
)
