package commands

import (
	"context"
	"fmt"
	"io"

	"taskbot/internal/exitcode"
	"taskbot/internal/output"
)

func init() {
	Register(&ListCmd{})
	Register(&TodayCmd{})
}

// ListCmd implements the list command.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"liste"} }
func (c *ListCmd) Synopsis() string  { return "List pending tasks" }

func (c *ListCmd) Run(ctx context.Context, env *Env, args string, out io.Writer) int {
	tasks, err := env.Store.ListPending(ctx)
	if err != nil {
		return writeError(env, out, err, "")
	}

	if len(tasks) == 0 {
		fmt.Fprintln(out, env.Catalog.Messages.ListEmpty)
		return exitcode.Success
	}

	output.FormatTaskList(out, env.Catalog, env.Catalog.Messages.ListTitle, tasks, true)
	return exitcode.Success
}

// TodayCmd implements the today command.
// The due date is left out of each block since it is always today.
type TodayCmd struct{}

func (c *TodayCmd) Name() string      { return "today" }
func (c *TodayCmd) Aliases() []string { return []string{"bugun"} }
func (c *TodayCmd) Synopsis() string  { return "List pending tasks due today" }

func (c *TodayCmd) Run(ctx context.Context, env *Env, args string, out io.Writer) int {
	tasks, err := env.Store.ListDueToday(ctx)
	if err != nil {
		return writeError(env, out, err, "")
	}

	if len(tasks) == 0 {
		fmt.Fprintln(out, env.Catalog.Messages.TodayEmpty)
		return exitcode.Success
	}

	today := env.Store.Today().Format(env.Catalog.DateLayout)
	title := fmt.Sprintf(env.Catalog.Messages.TodayTitle, today)
	output.FormatTaskList(out, env.Catalog, title, tasks, false)
	return exitcode.Success
}
