package commands

import (
	"context"
	"fmt"
	"io"

	"taskbot/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command. Telegram sends /start when a user
// opens the bot, so it is an alias.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return []string{"start", "yardim"} }
func (c *HelpCmd) Synopsis() string  { return "Show usage" }

func (c *HelpCmd) Run(ctx context.Context, env *Env, args string, out io.Writer) int {
	fmt.Fprint(out, env.Catalog.Messages.Help)
	return exitcode.Success
}
