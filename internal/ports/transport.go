package ports

import "context"

// Transport delivers bot messages to a threaded discussion service and to
// coaches privately. Every send returns the id of the created message so it can
// be tracked as a solicitation.
type Transport interface {
	// CreateThread opens the public discussion for a game and returns its id.
	CreateThread(ctx context.Context, gameID, title, body string) (threadID string, err error)

	// PostThread posts a top-level message into a game thread.
	PostThread(ctx context.Context, threadID, text string) (messageID string, err error)

	// Reply answers an inbound message in the same conversation.
	Reply(ctx context.Context, channel, messageID, text string) (replyID string, err error)

	// SendPrivate sends text to each recipient. The returned ids are in recipient order;
	// recipients that could not be reached are skipped and reported through err.
	SendPrivate(ctx context.Context, recipients []string, subject, text string) (messageIDs []string, err error)
}
