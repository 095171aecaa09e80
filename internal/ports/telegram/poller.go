package telegram

import (
	"context"
	"strconv"

	"refbot/internal/app"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/heroiclabs/nakama-common/runtime"
)

// UpdateSource is the part of *tgbotapi.BotAPI the poller uses.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handler consumes inbound messages; *app.Coordinator implements it.
type Handler interface {
	HandleInbound(ctx context.Context, logger runtime.Logger, in app.Inbound) error
}

// Poller long-polls Telegram and feeds messages to a Handler one at a time.
type Poller struct {
	source    UpdateSource
	transport *Transport
	handler   Handler
	botID     int64
	timeout   int
}

func NewPoller(source UpdateSource, transport *Transport, handler Handler, botID int64, timeoutSeconds int) *Poller {
	return &Poller{source: source, transport: transport, handler: handler, botID: botID, timeout: timeoutSeconds}
}

// Run processes updates until ctx is done.
func (p *Poller) Run(ctx context.Context, logger runtime.Logger) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout
	updates := p.source.GetUpdatesChan(u)
	logger.Info("Poller: receiving updates")

	for {
		select {
		case <-ctx.Done():
			p.source.StopReceivingUpdates()
			logger.Info("Poller: stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			p.handle(ctx, logger, update)
		}
	}
}

func (p *Poller) handle(ctx context.Context, logger runtime.Logger, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || msg.From.IsBot {
		return
	}
	if msg.Chat.IsPrivate() {
		p.transport.Remember(msg.From.UserName, msg.Chat.ID)
	}
	in, ok := ToInbound(msg, p.botID)
	if !ok {
		return
	}
	if err := p.handler.HandleInbound(ctx, logger, in); err != nil {
		logger.Error("Poller: message %s from %s: %v", in.MessageID, in.Author, err)
	}
}

// ToInbound converts a Telegram message. Messages from users without a
// username cannot be matched to a coach and are skipped.
func ToInbound(msg *tgbotapi.Message, botID int64) (app.Inbound, bool) {
	if msg == nil || msg.From == nil || msg.Chat == nil || msg.From.UserName == "" {
		return app.Inbound{}, false
	}
	in := app.Inbound{
		MessageID: MessageID(msg.Chat.ID, msg.MessageID),
		Channel:   strconv.FormatInt(msg.Chat.ID, 10),
		Author:    msg.From.UserName,
		Body:      msg.Text,
		Private:   msg.Chat.IsPrivate(),
	}
	if parent := msg.ReplyToMessage; parent != nil {
		in.Parent = &app.Parent{
			ID:      MessageID(msg.Chat.ID, parent.MessageID),
			Body:    parent.Text,
			FromBot: parent.From != nil && parent.From.ID == botID,
		}
	}
	return in, true
}
