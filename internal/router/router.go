// Package router maps inbound chat messages to commands and turns their
// output into replies. It is the boundary where every failure becomes a
// chat message.
package router

import (
	"bytes"
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"taskbot/internal/commands"
	"taskbot/internal/exitcode"
)

// Message is an inbound chat message.
type Message struct {
	ChatID int64
	User   string
	Text   string
}

// Reply is the response to one command.
type Reply struct {
	ChatID  int64
	Text    string
	HTML    bool
	Command string
	Code    int
}

// Router dispatches command messages through a registry.
type Router struct {
	registry *commands.Registry
	env      *commands.Env
	botName  string
	logger   *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithBotName makes the router ignore commands addressed to other bots
// ("/list@otherbot").
func WithBotName(name string) Option {
	return func(r *Router) { r.botName = strings.TrimPrefix(name, "@") }
}

// New creates a router. env.Logger is used as the base logger.
func New(registry *commands.Registry, env *commands.Env, opts ...Option) *Router {
	r := &Router{
		registry: registry,
		env:      env,
		logger:   env.Logger,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Parse splits a command message into its name, optional @mention and
// trimmed arguments. ok is false for text that is not a command.
func Parse(text string) (name, mention, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", "", false
	}

	token := text
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		token, args = text[:i], strings.TrimSpace(text[i:])
	}

	name = token[1:]
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name, mention = name[:i], name[i+1:]
	}
	if name == "" {
		return "", "", "", false
	}
	return name, mention, args, true
}

// Handle runs the command in msg. handled is false when msg is not a
// command for this bot; no reply should be sent then.
func (r *Router) Handle(ctx context.Context, msg Message) (reply Reply, handled bool) {
	name, mention, args, ok := Parse(msg.Text)
	if !ok {
		return Reply{}, false
	}
	if mention != "" && r.botName != "" && !strings.EqualFold(mention, r.botName) {
		return Reply{}, false
	}

	logger := r.logger.With(
		"request_id", uuid.NewString(),
		"chat_id", msg.ChatID,
		"user", msg.User,
		"command", name,
	)

	cmd, found := r.registry.Find(name)
	if !found {
		logger.Info("unknown command")
		return Reply{
			ChatID:  msg.ChatID,
			Text:    r.env.Catalog.Messages.UnknownCommand,
			Command: name,
			Code:    exitcode.UserError,
		}, true
	}

	start := time.Now()
	text, code := r.run(ctx, cmd, args, logger)
	logger.Info("command handled", "code", code, "duration", time.Since(start))

	return Reply{
		ChatID:  msg.ChatID,
		Text:    text,
		HTML:    true,
		Command: cmd.Name(),
		Code:    code,
	}, true
}

// run executes cmd, converting a panic into the generic failure reply.
func (r *Router) run(ctx context.Context, cmd commands.Command, args string, logger *slog.Logger) (text string, code int) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("command panicked", "panic", p, "stack", string(debug.Stack()))
			text, code = r.env.Catalog.Messages.Failure, exitcode.InternalError
		}
	}()

	env := *r.env
	env.Logger = logger

	var out bytes.Buffer
	code = cmd.Run(ctx, &env, args, &out)
	return strings.TrimRight(out.String(), "\n"), code
}
