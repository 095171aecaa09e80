package nakama

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"refbot/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// ChannelTransport implements ports.Transport with Nakama chat channels. A game
// thread is a room channel; private messages go to direct-message channels
// between the system user and each coach.
type ChannelTransport struct {
	nk runtime.NakamaModule
}

// NewChannelTransport creates a new channel-backed transport.
func NewChannelTransport(nk runtime.NakamaModule) *ChannelTransport {
	return &ChannelTransport{nk: nk}
}

func (t *ChannelTransport) CreateThread(ctx context.Context, gameID, title, body string) (string, error) {
	channelID, err := t.nk.ChannelIdBuild(ctx, "", roomPrefix+gameID, runtime.Room)
	if err != nil {
		return "", fmt.Errorf("failed to build room for game %s: %w", gameID, err)
	}
	content := messageContent{Subject: title, Body: body}
	if _, err := t.send(ctx, channelID, content); err != nil {
		return "", err
	}
	return channelID, nil
}

func (t *ChannelTransport) PostThread(ctx context.Context, threadID, text string) (string, error) {
	return t.send(ctx, threadID, messageContent{Body: text})
}

func (t *ChannelTransport) Reply(ctx context.Context, channel, messageID, text string) (string, error) {
	if channel == "" {
		return "", fmt.Errorf("reply to %s: channel is required", messageID)
	}
	return t.send(ctx, channel, messageContent{Body: text, ReplyTo: messageID})
}

func (t *ChannelTransport) SendPrivate(ctx context.Context, recipients []string, subject, text string) ([]string, error) {
	users, err := t.nk.UsersGetUsername(ctx, recipients)
	if err != nil {
		return nil, fmt.Errorf("failed to look up recipients: %w", err)
	}
	byName := make(map[string]string, len(users))
	for _, u := range users {
		byName[strings.ToLower(u.Username)] = u.Id
	}

	var ids []string
	var errs []error
	for _, r := range recipients {
		userID, ok := byName[strings.ToLower(r)]
		if !ok {
			errs = append(errs, fmt.Errorf("no user named %s", r))
			continue
		}
		channelID, err := t.nk.ChannelIdBuild(ctx, systemUserID, userID, runtime.DirectMessage)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to build direct channel for %s: %w", r, err))
			continue
		}
		id, err := t.send(ctx, channelID, messageContent{Subject: subject, Body: text})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, errors.Join(errs...)
}

func (t *ChannelTransport) send(ctx context.Context, channelID string, content messageContent) (string, error) {
	ack, err := t.nk.ChannelMessageSend(ctx, channelID, content.toMap(), systemUserID, botUsername, true)
	if err != nil {
		return "", fmt.Errorf("failed to send to channel %s: %w", channelID, err)
	}
	return ack.GetMessageId(), nil
}

var _ ports.Transport = (*ChannelTransport)(nil)
