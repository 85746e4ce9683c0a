package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"taskbot/internal/exitcode"
	"taskbot/internal/output"
)

func init() {
	Register(&CompleteCmd{})
}

// CompleteCmd implements the complete command.
// The whole argument is the task name, spaces included.
type CompleteCmd struct{}

func (c *CompleteCmd) Name() string      { return "complete" }
func (c *CompleteCmd) Aliases() []string { return []string{"tamamla", "done"} }
func (c *CompleteCmd) Synopsis() string  { return "Mark a pending task as done" }

func (c *CompleteCmd) Run(ctx context.Context, env *Env, args string, out io.Writer) int {
	name := strings.TrimSpace(args)
	if name == "" {
		fmt.Fprintln(out, env.Catalog.Messages.CompleteUsage)
		return exitcode.UserError
	}

	task, err := env.Store.Complete(ctx, name)
	if err != nil {
		return writeError(env, out, err, name)
	}

	fmt.Fprintf(out, env.Catalog.Messages.Completed+"\n", output.Escape(task.Name))
	return exitcode.Success
}
