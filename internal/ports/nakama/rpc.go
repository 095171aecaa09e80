package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"refbot/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// handlers holds the coordinator shared by every RPC and hook.
type handlers struct {
	coord *app.Coordinator
}

// registerRPCs registers Nakama RPC endpoints.
func registerRPCs(initializer runtime.Initializer, h *handlers) error {
	if err := initializer.RegisterRpc(RpcReply, h.rpcReply); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcCommand, h.rpcCommand)
}

type replyRequest struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	ReplyTo   string `json:"reply_to"`
	Body      string `json:"body"`
}

type commandRequest struct {
	Body string `json:"body"`
}

type rpcResponse struct {
	OK bool `json:"ok"`
}

// rpcReply hands a coach's channel message to the referee.
//
// Payload: {"channel_id": "...", "message_id": "...", "reply_to": "...", "body": "..."}
func (h *handlers) rpcReply(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	username, _ := ctx.Value(runtime.RUNTIME_CTX_USERNAME).(string)
	if username == "" {
		return "", runtime.NewError("Authentication required", codeUnauthenticated)
	}

	var req replyRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}
	if req.ChannelID == "" || req.MessageID == "" {
		return "", runtime.NewError("channel_id and message_id are required", codeInvalidArgument)
	}

	in, err := toInbound(ctx, nk, inboundMessage{
		ChannelID: req.ChannelID,
		MessageID: req.MessageID,
		ReplyTo:   req.ReplyTo,
		Author:    username,
		Body:      req.Body,
	})
	if err != nil {
		logger.Error("rpcReply [User:%s]: Failed to resolve parent: %v", username, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	if err := h.coord.HandleInbound(ctx, logger, in); err != nil {
		logger.Error("rpcReply [User:%s]: %v", username, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	return okResponse(), nil
}

// rpcCommand runs a moderator command. The answer arrives in the direct
// channel between the caller and the bot.
//
// Payload: {"body": "status <game>"}
func (h *handlers) rpcCommand(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	username, _ := ctx.Value(runtime.RUNTIME_CTX_USERNAME).(string)
	if userID == "" || username == "" {
		return "", runtime.NewError("Authentication required", codeUnauthenticated)
	}

	var req commandRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	channelID, err := nk.ChannelIdBuild(ctx, systemUserID, userID, runtime.DirectMessage)
	if err != nil {
		logger.Error("rpcCommand [User:%s]: Failed to build direct channel: %v", username, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	in := app.Inbound{Channel: channelID, Author: username, Body: req.Body, Private: true}
	if err := h.coord.HandleInbound(ctx, logger, in); err != nil {
		logger.Error("rpcCommand [User:%s]: %v", username, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	return okResponse(), nil
}

func okResponse() string {
	b, _ := json.Marshal(rpcResponse{OK: true})
	return string(b)
}
