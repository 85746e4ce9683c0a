// Package cli wires configuration, the spreadsheet backend and the chat
// transport into the taskbot command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"taskbot/internal/commands"
	"taskbot/internal/config"
	"taskbot/internal/exitcode"
	"taskbot/internal/locale"
	"taskbot/internal/logging"
	"taskbot/internal/router"
	"taskbot/internal/server"
	"taskbot/internal/service"
	"taskbot/internal/taskstore"
	"taskbot/internal/transport/telegram"
)

// Version is the application version.
const Version = "0.1.0"

// SheetFactory opens the task worksheet.
// Used to inject the backend during dispatch.
type SheetFactory func(ctx context.Context, cfg *config.Config) (service.Sheet, error)

// BotFactory connects to the Bot API and returns the bot's username.
type BotFactory func(token string) (api telegram.API, username string, err error)

// App builds and runs the command tree.
type App struct {
	registry *commands.Registry
	sheets   SheetFactory
	bots     BotFactory
}

// NewApp creates an app with the given registry and backend factories.
func NewApp(registry *commands.Registry, sheets SheetFactory, bots BotFactory) *App {
	return &App{
		registry: registry,
		sheets:   sheets,
		bots:     bots,
	}
}

// exitError carries an exit code out of a cobra RunE. A nil err means the
// command already reported its outcome.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func fail(code int, err error) error {
	return &exitError{code: code, err: err}
}

// Run parses arguments and dispatches to the matching subcommand.
// Returns the exit code.
func (a *App) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	root := a.newRootCmd(out, errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitcode.Success
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(errOut, "error: %s\n", ee.err)
		}
		return ee.code
	}
	// Anything else comes from cobra itself: unknown command, bad flag.
	fmt.Fprintf(errOut, "error: %s\n", err)
	return exitcode.UserError
}

func (a *App) newRootCmd(out, errOut io.Writer) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "taskbot",
		Short: "Telegram task tracker backed by a Google Sheets worksheet",
		Long: `taskbot answers Telegram commands by reading and writing a task list kept in a
Google Sheets worksheet.

Commands in chat: /add, /list, /today, /complete, /help.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		a.newServeCmd(&configPath, errOut),
		a.newExecCmd(&configPath, out, errOut),
		a.newInitSheetCmd(&configPath, out, errOut),
		newVersionCmd(out),
	)
	return root
}

func newVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(out, "taskbot %s\n", Version)
			return nil
		},
	}
}

func (a *App) newExecCmd(configPath *string, out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <text...>",
		Short: "Run one chat command locally and print the reply",
		Example: `  taskbot exec "/add Report; Q3 numbers; 2024-12-31; Alice"
  taskbot exec list`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.setup(cmd.Context(), *configPath, false, errOut)
			if err != nil {
				return err
			}

			text := strings.TrimSpace(strings.Join(args, " "))
			if !strings.HasPrefix(text, "/") {
				text = "/" + text
			}

			r := router.New(a.registry, rt.env)
			reply, handled := r.Handle(cmd.Context(), router.Message{Text: text})
			if !handled {
				return fail(exitcode.UserError, fmt.Errorf("not a command: %q", text))
			}

			fmt.Fprintln(out, reply.Text)
			if reply.Code != exitcode.Success {
				return fail(reply.Code, nil)
			}
			return nil
		},
	}
}

func (a *App) newInitSheetCmd(configPath *string, out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "init-sheet",
		Short: "Write the header row, clearing the worksheet if the header is wrong",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.setup(cmd.Context(), *configPath, false, errOut)
			if err != nil {
				return err
			}

			reset, err := rt.env.Store.EnsureSchema(cmd.Context())
			if err != nil {
				return fail(exitcode.BackendError, err)
			}
			if reset {
				fmt.Fprintln(out, "reset")
			} else {
				fmt.Fprintln(out, "ok")
			}
			return nil
		},
	}
}

func (a *App) newServeCmd(configPath *string, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := a.setup(ctx, *configPath, true, errOut)
			if err != nil {
				return err
			}
			return a.serve(ctx, rt)
		},
	}
}

// instance holds everything built from config for one invocation.
type instance struct {
	cfg    *config.Config
	env    *commands.Env
	logger *slog.Logger
}

// setup loads and validates config, then opens the worksheet. Config and
// credential problems exit with AuthError before any command runs.
func (a *App) setup(ctx context.Context, configPath string, requireBot bool, errOut io.Writer) (*instance, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fail(exitcode.AuthError, err)
	}
	if err := cfg.Validate(requireBot); err != nil {
		return nil, fail(exitcode.AuthError, fmt.Errorf("invalid configuration:\n%w", err))
	}

	logger, err := logging.New(errOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fail(exitcode.AuthError, err)
	}
	cat, err := locale.Load(cfg.Locale)
	if err != nil {
		return nil, fail(exitcode.AuthError, err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fail(exitcode.AuthError, err)
	}

	sheet, err := a.sheets(ctx, cfg)
	if err != nil {
		return nil, openFailure(err)
	}

	store := taskstore.New(sheet, cat.Schema(),
		taskstore.WithLocation(loc),
		taskstore.WithLogger(logger),
	)
	return &instance{
		cfg:    cfg,
		env:    &commands.Env{Store: store, Catalog: cat, Logger: logger},
		logger: logger,
	}, nil
}

// openFailure maps a backend construction error to an exit code. Anything
// but a reachable-yet-failing API is treated as a credentials problem.
func openFailure(err error) error {
	var storeErr *service.StoreError
	if errors.As(err, &storeErr) && storeErr.Reason != service.ReasonAuth {
		return fail(exitcode.BackendError, err)
	}
	return fail(exitcode.AuthError, err)
}

func (a *App) serve(ctx context.Context, rt *instance) error {
	cfg, logger := rt.cfg, rt.logger

	reset, err := rt.env.Store.EnsureSchema(ctx)
	if err != nil {
		return fail(exitcode.BackendError, err)
	}
	logger.Info("worksheet ready", "reset", reset)

	api, username, err := a.bots(cfg.Telegram.Token)
	if err != nil {
		return fail(exitcode.AuthError, fmt.Errorf("connect to telegram: %w", err))
	}

	r := router.New(a.registry, rt.env, router.WithBotName(username))
	bot := telegram.New(api, r,
		telegram.WithAllowFunc(cfg.AllowsChat),
		telegram.WithPollTimeout(cfg.Telegram.PollTimeout),
		telegram.WithLogger(logger),
	)
	if err := bot.RegisterCommands(a.registry); err != nil {
		logger.Warn("could not publish command menu", "err", err)
	}

	logger.Info("bot started", "username", username, "mode", cfg.Telegram.Mode, "locale", cfg.Locale)

	switch cfg.Telegram.Mode {
	case config.ModeWebhook:
		if err := bot.SetWebhook(server.WebhookURL(cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret)); err != nil {
			return fail(exitcode.BackendError, err)
		}
		srv := server.New(bot, cfg.Telegram.WebhookSecret, logger)
		if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
			return fail(exitcode.InternalError, err)
		}
	default:
		if err := bot.DeleteWebhook(); err != nil {
			return fail(exitcode.BackendError, err)
		}
		if err := bot.Poll(ctx); err != nil {
			return fail(exitcode.InternalError, err)
		}
	}

	logger.Info("bot stopped")
	return nil
}
