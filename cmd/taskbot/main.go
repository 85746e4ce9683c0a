// Package main is the entry point for the taskbot binary.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskbot/internal/backend/googlesheets"
	"taskbot/internal/cli"
	"taskbot/internal/commands"
	"taskbot/internal/config"
	"taskbot/internal/service"
	"taskbot/internal/transport/telegram"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	sheets := func(ctx context.Context, cfg *config.Config) (service.Sheet, error) {
		return googlesheets.New(ctx, cfg)
	}
	bots := func(token string) (telegram.API, string, error) {
		api, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			return nil, "", err
		}
		return api, api.Self.UserName, nil
	}

	app := cli.NewApp(commands.DefaultRegistry, sheets, bots)

	// Run and exit with code
	code := app.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
