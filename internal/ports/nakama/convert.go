package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"refbot/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// messageContent is the JSON content of every refbot channel message.
type messageContent struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
	ReplyTo string `json:"reply_to,omitempty"`
}

func (c messageContent) toMap() map[string]interface{} {
	m := map[string]interface{}{"body": c.Body}
	if c.Subject != "" {
		m["subject"] = c.Subject
	}
	if c.ReplyTo != "" {
		m["reply_to"] = c.ReplyTo
	}
	return m
}

func parseContent(raw string) (messageContent, error) {
	var c messageContent
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return messageContent{}, fmt.Errorf("invalid message content: %w", err)
	}
	return c, nil
}

// isDirectChannel reports whether channelID names a direct-message stream.
// Channel ids start with the stream mode; 4 is a direct message.
func isDirectChannel(channelID string) bool {
	return strings.HasPrefix(channelID, "4.")
}

// inboundMessage is a coach message as seen by the adapter before the parent
// has been looked up.
type inboundMessage struct {
	ChannelID string
	MessageID string
	ReplyTo   string
	Author    string
	Body      string
}

// toInbound builds the app message, fetching the parent's body from the
// channel history when the message replies to something.
func toInbound(ctx context.Context, nk runtime.NakamaModule, m inboundMessage) (app.Inbound, error) {
	in := app.Inbound{
		MessageID: m.MessageID,
		Channel:   m.ChannelID,
		Author:    m.Author,
		Body:      m.Body,
		Private:   isDirectChannel(m.ChannelID),
	}
	if m.ReplyTo == "" {
		return in, nil
	}
	parent, err := findParent(ctx, nk, m.ChannelID, m.ReplyTo)
	if err != nil {
		return app.Inbound{}, err
	}
	in.Parent = parent
	return in, nil
}

func findParent(ctx context.Context, nk runtime.NakamaModule, channelID, messageID string) (*app.Parent, error) {
	messages, _, _, err := nk.ChannelMessagesList(ctx, channelID, parentSearchLimit, false, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list messages in %s: %w", channelID, err)
	}
	for _, msg := range messages {
		if msg.GetMessageId() != messageID {
			continue
		}
		content, err := parseContent(msg.GetContent())
		if err != nil {
			return nil, err
		}
		return &app.Parent{
			ID:      messageID,
			Body:    content.Body,
			FromBot: msg.GetSenderId() == systemUserID,
		}, nil
	}
	// An unknown parent is treated as a message without a bot envelope.
	return &app.Parent{ID: messageID}, nil
}
