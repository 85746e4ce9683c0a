// Package commands provides the chat command interface and implementations.
package commands

import (
	"context"
	"io"
	"log/slog"

	"taskbot/internal/locale"
	"taskbot/internal/taskstore"
)

// Env carries the dependencies shared by every command. It is built once at
// startup and passed to each Run call.
type Env struct {
	Store   *taskstore.Store
	Catalog *locale.Catalog
	Logger  *slog.Logger
}

// Command defines the interface for chat commands.
type Command interface {
	// Name returns the primary command name, without the leading slash.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for the bot command menu.
	Synopsis() string

	// Run executes the command.
	// args is the message text after the command token, trimmed.
	// The reply is written to out. Returns an exitcode value.
	Run(ctx context.Context, env *Env, args string, out io.Writer) int
}
