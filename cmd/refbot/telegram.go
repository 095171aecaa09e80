package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"refbot/internal/app"
	"refbot/internal/config"
	"refbot/internal/logging"
	"refbot/internal/ports/telegram"
	"refbot/internal/resolver"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

func (c *cli) telegramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Run the referee as a Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			logger := logging.New(cfg.LogLevel)
			if cfg.Telegram.Token == "" {
				return fmt.Errorf("telegram token is required (telegram.token or REFBOT_TELEGRAM_TOKEN)")
			}
			if cfg.RevertSecret == "" {
				logger.Warn("telegram: no revert secret configured, revert commands are disabled")
			}

			bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
			if err != nil {
				return fmt.Errorf("create bot: %w", err)
			}
			bot.Debug = cfg.Telegram.Debug
			logger.Info("telegram: authorized on account %s", bot.Self.UserName)

			transport := telegram.NewTransport(bot, cfg.Telegram.ThreadChatID, cfg.Telegram.CoachChats)
			svc := app.NewService(nil, resolver.New(), cfg)
			signer := app.NewRevertSigner(cfg.RevertSecret, cfg.RevertIssuer, cfg.RevertTTL())
			coord := app.NewCoordinator(svc, store, transport, config.NewStaticRoster(cfg.Teams), signer)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			poller := telegram.NewPoller(bot, transport, coord, bot.Self.ID, cfg.Telegram.PollTimeoutSeconds)
			if err := poller.Run(ctx, logger); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
