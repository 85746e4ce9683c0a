package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"taskbot/internal/exitcode"
	"taskbot/internal/output"
	"taskbot/internal/service"
	"taskbot/internal/taskstore"
)

// AddFieldSeparator splits the fields of an add command.
const AddFieldSeparator = ";"

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"ekle"} }
func (c *AddCmd) Synopsis() string  { return "Add a task: name; note; due date; person" }

func (c *AddCmd) Run(ctx context.Context, env *Env, args string, out io.Writer) int {
	if strings.TrimSpace(args) == "" {
		fmt.Fprintln(out, env.Catalog.Messages.AddUsage)
		return exitcode.UserError
	}

	in, err := ParseAddArgs(args)
	if err != nil {
		fmt.Fprintln(out, env.Catalog.Messages.AddFieldCount)
		return exitcode.UserError
	}

	task, err := env.Store.Add(ctx, in)
	if err != nil {
		return writeError(env, out, err, in.Name)
	}

	output.FormatAdded(out, env.Catalog, task)
	return exitcode.Success
}

// ParseAddArgs splits "name; note; due; person" into trimmed fields.
// Exactly four fields are required; empty fields are allowed.
func ParseAddArgs(args string) (taskstore.NewTask, error) {
	parts := strings.Split(args, AddFieldSeparator)
	if len(parts) != 4 {
		return taskstore.NewTask{}, fmt.Errorf("%w: expected 4 fields, got %d", service.ErrInvalidArgumentCount, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return taskstore.NewTask{
		Name:     parts[0],
		Note:     parts[1],
		DueDate:  parts[2],
		Assignee: parts[3],
	}, nil
}
