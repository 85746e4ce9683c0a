// Package telegram connects the command router to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskbot/internal/commands"
	"taskbot/internal/output"
	"taskbot/internal/router"
)

// DefaultPollTimeout is the long-poll timeout in seconds.
const DefaultPollTimeout = 30

// API is the subset of *tgbotapi.BotAPI used by the bot.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handler turns a chat message into a reply.
type Handler interface {
	Handle(ctx context.Context, msg router.Message) (router.Reply, bool)
}

// Bot receives updates and answers them one at a time.
type Bot struct {
	api         API
	handler     Handler
	allow       func(chatID int64) bool
	pollTimeout int
	logger      *slog.Logger

	// mu serializes update handling across polling and webhook delivery.
	mu sync.Mutex
}

// Option configures a Bot.
type Option func(*Bot)

// WithAllowFunc restricts the bot to chats for which allow returns true.
// Without it every chat is admitted.
func WithAllowFunc(allow func(chatID int64) bool) Option {
	return func(b *Bot) { b.allow = allow }
}

// WithPollTimeout sets the long-poll timeout in seconds.
func WithPollTimeout(seconds int) Option {
	return func(b *Bot) { b.pollTimeout = seconds }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) { b.logger = l }
}

// New creates a bot.
func New(api API, handler Handler, opts ...Option) *Bot {
	b := &Bot{
		api:         api,
		handler:     handler,
		pollTimeout: DefaultPollTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allows reports whether chatID may issue commands.
func (b *Bot) Allows(chatID int64) bool {
	return b.allow == nil || b.allow(chatID)
}

// HandleUpdate answers a single update. Updates without a text message,
// from chats outside the allowlist, or that are not commands are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}
	if !b.Allows(msg.Chat.ID) {
		b.logger.Warn("ignoring message from chat outside allowlist", "chat_id", msg.Chat.ID)
		return nil
	}

	var user string
	if msg.From != nil {
		user = msg.From.UserName
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	reply, ok := b.handler.Handle(ctx, router.Message{
		ChatID: msg.Chat.ID,
		User:   user,
		Text:   msg.Text,
	})
	if !ok {
		return nil
	}
	return b.send(reply)
}

// send delivers a reply. When Telegram rejects the HTML, the text is sent
// again as plain text.
func (b *Bot) send(reply router.Reply) error {
	out := tgbotapi.NewMessage(reply.ChatID, reply.Text)
	if reply.HTML {
		out.ParseMode = tgbotapi.ModeHTML
	}

	_, err := b.api.Send(out)
	if err == nil {
		return nil
	}
	if !reply.HTML || !isParseError(err) {
		return fmt.Errorf("send reply to chat %d: %w", reply.ChatID, err)
	}

	b.logger.Warn("markup rejected, resending as plain text", "chat_id", reply.ChatID, "command", reply.Command, "err", err)
	out.ParseMode = ""
	out.Text = output.PlainText(reply.Text)
	if _, err := b.api.Send(out); err != nil {
		return fmt.Errorf("send plain reply to chat %d: %w", reply.ChatID, err)
	}
	return nil
}

func isParseError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "parse")
}

// Poll receives updates by long polling until ctx is done.
func (b *Bot) Poll(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(cfg)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("polling for updates", "timeout", b.pollTimeout)
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.HandleUpdate(ctx, update); err != nil {
				b.logger.Error("failed to handle update", "update_id", update.UpdateID, "err", err)
			}
		}
	}
}

// RegisterCommands publishes the command menu shown by Telegram clients.
func (b *Bot) RegisterCommands(registry *commands.Registry) error {
	var menu []tgbotapi.BotCommand
	for _, cmd := range registry.All() {
		menu = append(menu, tgbotapi.BotCommand{
			Command:     cmd.Name(),
			Description: cmd.Synopsis(),
		})
	}
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(menu...)); err != nil {
		return fmt.Errorf("set bot commands: %w", err)
	}
	return nil
}

// SetWebhook tells Telegram to deliver updates to url.
func (b *Bot) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// DeleteWebhook removes any webhook so that long polling can be used.
func (b *Bot) DeleteWebhook() error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}
