package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/rtapi"
	"github.com/heroiclabs/nakama-common/runtime"
)

// afterChannelMessageSend is triggered after a client sends a chat message over
// its socket. Messages that reply to something are passed to the referee; the
// rest is chatter.
func (h *handlers) afterChannelMessageSend(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out, in *rtapi.Envelope) error {
	send := in.GetChannelMessageSend()
	ack := out.GetChannelMessageAck()
	if send == nil || ack == nil {
		return nil
	}
	username, _ := ctx.Value(runtime.RUNTIME_CTX_USERNAME).(string)
	if username == "" || username == botUsername {
		return nil
	}

	content, err := parseContent(send.GetContent())
	if err != nil {
		logger.Debug("afterChannelMessageSend: ignoring message %s: %v", ack.GetMessageId(), err)
		return nil
	}
	if content.ReplyTo == "" && !isDirectChannel(ack.GetChannelId()) {
		return nil
	}

	msg, err := toInbound(ctx, nk, inboundMessage{
		ChannelID: ack.GetChannelId(),
		MessageID: ack.GetMessageId(),
		ReplyTo:   content.ReplyTo,
		Author:    username,
		Body:      content.Body,
	})
	if err != nil {
		logger.Error("afterChannelMessageSend: Failed to resolve parent of %s: %v", ack.GetMessageId(), err)
		return err
	}
	if err := h.coord.HandleInbound(ctx, logger, msg); err != nil {
		logger.Error("afterChannelMessageSend: %v", err)
		return err
	}
	return nil
}
