// Package telegram runs the referee over a Telegram bot: the game thread is a
// group chat and private messages go to each coach's chat with the bot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"refbot/internal/ports"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI the transport uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Transport implements ports.Transport. Message ids are "<chat>:<message>" so a
// reply can be addressed without extra state.
//
// Messages go out without a parse mode. The poller reads the context back from
// ReplyToMessage.Text, which Telegram returns without link targets, so the
// envelope stays visible on this transport.
type Transport struct {
	bot        Sender
	threadChat int64

	mu    sync.RWMutex
	chats map[string]int64
}

// NewTransport creates a transport posting game threads to threadChat. Coach
// chats come from configuration and from private messages seen by the poller.
func NewTransport(bot Sender, threadChat int64, coachChats map[string]int64) *Transport {
	chats := make(map[string]int64, len(coachChats))
	for name, id := range coachChats {
		chats[strings.ToLower(name)] = id
	}
	return &Transport{bot: bot, threadChat: threadChat, chats: chats}
}

// Remember records the private chat of a user.
func (t *Transport) Remember(username string, chatID int64) {
	if username == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chats[strings.ToLower(username)] = chatID
}

func (t *Transport) chatFor(username string) (int64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.chats[strings.ToLower(username)]
	return id, ok
}

func (t *Transport) CreateThread(ctx context.Context, gameID, title, body string) (string, error) {
	if t.threadChat == 0 {
		return "", fmt.Errorf("create thread for %s: thread chat is not configured", gameID)
	}
	if _, err := t.send(ctx, tgbotapi.NewMessage(t.threadChat, title+"\n\n"+body)); err != nil {
		return "", err
	}
	return strconv.FormatInt(t.threadChat, 10), nil
}

func (t *Transport) PostThread(ctx context.Context, threadID, text string) (string, error) {
	chatID, err := strconv.ParseInt(threadID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid thread id %q: %w", threadID, err)
	}
	return t.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (t *Transport) Reply(ctx context.Context, _ string, messageID, text string) (string, error) {
	chatID, msgID, err := ParseMessageID(messageID)
	if err != nil {
		return "", err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = msgID
	return t.send(ctx, msg)
}

func (t *Transport) SendPrivate(ctx context.Context, recipients []string, subject, text string) ([]string, error) {
	var ids []string
	var errs []error
	for _, r := range recipients {
		chatID, ok := t.chatFor(r)
		if !ok {
			errs = append(errs, fmt.Errorf("no private chat known for %s", r))
			continue
		}
		id, err := t.send(ctx, tgbotapi.NewMessage(chatID, subject+"\n\n"+text))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, errors.Join(errs...)
}

func (t *Transport) send(ctx context.Context, msg tgbotapi.MessageConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sent, err := t.bot.Send(msg)
	if err != nil {
		return "", fmt.Errorf("send to chat %d: %w", msg.ChatID, err)
	}
	chatID := msg.ChatID
	if sent.Chat != nil {
		chatID = sent.Chat.ID
	}
	return MessageID(chatID, sent.MessageID), nil
}

// MessageID formats the id of a message in a chat.
func MessageID(chatID int64, messageID int) string {
	return strconv.FormatInt(chatID, 10) + ":" + strconv.Itoa(messageID)
}

// ParseMessageID splits an id produced by MessageID.
func ParseMessageID(id string) (int64, int, error) {
	chat, msg, ok := strings.Cut(id, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid message id %q", id)
	}
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid chat in message id %q: %w", id, err)
	}
	msgID, err := strconv.Atoi(msg)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid message in message id %q: %w", id, err)
	}
	return chatID, msgID, nil
}

var _ ports.Transport = (*Transport)(nil)
