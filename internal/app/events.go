package app

import "refbot/internal/domain"

// Inbound is a message a coach or moderator sent to the bot.
type Inbound struct {
	MessageID string
	// Channel is the transport conversation the message arrived in.
	Channel string
	Author  string
	Body    string
	Private bool
	// Parent is the message being replied to, nil for top-level messages.
	Parent *Parent
}

// Parent is the message an inbound reply answers.
type Parent struct {
	ID      string
	Body    string
	FromBot bool
}

// OutboundKind identifies where an outbound message is delivered.
type OutboundKind string

const (
	// OutboundThread posts into the game's public thread.
	OutboundThread OutboundKind = "thread"
	// OutboundPrivate messages every coach of one side.
	OutboundPrivate OutboundKind = "private"
)

// Outbound is a message the caller must deliver after a turn.
type Outbound struct {
	Kind    OutboundKind
	Side    domain.Side
	Subject string
	Text    string
	// Tracked marks the message as a solicitation; its ids join the waiting ledger.
	Tracked bool
}

// RejectReason classifies a rejected reply.
type RejectReason string

const (
	RejectGameOver     RejectReason = "game_over"
	RejectAbandoned    RejectReason = "abandoned"
	RejectErrored      RejectReason = "errored"
	RejectNotCoach     RejectReason = "not_coach"
	RejectWrongGame    RejectReason = "wrong_game"
	RejectWrongAction  RejectReason = "wrong_action"
	RejectWrongSide    RejectReason = "wrong_side"
	RejectStaleMessage RejectReason = "stale_message"
	RejectWrongChannel RejectReason = "wrong_channel"
	RejectInvalidInput RejectReason = "invalid_input"
)

// Rejection explains why a reply was refused. A rejected reply never changes game state.
type Rejection struct {
	Reason  RejectReason
	Message string
}

// Decision is the result of handling one reply.
type Decision struct {
	// Reply answers the inbound message; empty means no reply.
	Reply string
	// ReplyTracked marks the reply as the next solicitation.
	ReplyTracked bool
	Outbound     []Outbound
	Rejection    *Rejection
	// Changed reports that the game record must be saved.
	Changed bool
}
