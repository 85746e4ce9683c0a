package commands

import (
	"fmt"
	"io"

	"taskbot/internal/exitcode"
	"taskbot/internal/output"
	"taskbot/internal/service"
)

// writeError writes the reply for a store error and returns its exit code.
// name is the task name the user typed, if any.
func writeError(env *Env, out io.Writer, err error, name string) int {
	msgs := env.Catalog.Messages
	kind := service.KindOf(err)

	switch kind {
	case service.ErrInvalidDateFormat:
		fmt.Fprintln(out, msgs.InvalidDate)
		return exitcode.UserError
	case service.ErrInvalidArgumentCount:
		fmt.Fprintln(out, msgs.AddFieldCount)
		return exitcode.UserError
	case service.ErrTaskNotFound:
		fmt.Fprintf(out, msgs.NotFound+"\n", output.Escape(name))
		return exitcode.UserError
	case service.ErrRemoteStore:
		env.Logger.Warn("remote store unavailable", "error", err)
		fmt.Fprintln(out, msgs.RemoteError)
		return exitcode.BackendError
	default:
		env.Logger.Error("command failed", "kind", kind, "error", err)
		fmt.Fprintln(out, msgs.Failure)
		return exitcode.InternalError
	}
}
