package nakama

const (
	// RpcReply is the RPC id clients call to submit a coach's reply to a bot message.
	RpcReply = "refbot_reply"

	// RpcCommand is the RPC id clients call to send a moderator command.
	RpcCommand = "refbot_command"

	// RtChannelMessageSend is the realtime message id hooked to see coach replies sent over sockets.
	RtChannelMessageSend = "ChannelMessageSend"
)

// Storage collections owned by the system user.
const (
	gamesCollection   = "refbot_games"
	coachesCollection = "refbot_coaches"
)

const (
	// systemUserID is Nakama's built-in system user; the bot posts as this user.
	systemUserID = "00000000-0000-0000-0000-000000000000"

	// botUsername labels messages the bot sends.
	botUsername = "refbot"

	// roomPrefix prefixes the room channel that hosts a game thread.
	roomPrefix = "refbot-"

	// parentSearchLimit bounds how far back the parent of a reply is searched.
	parentSearchLimit = 100
)

// Environment keys read from the runtime env map.
const (
	envConfigPath   = "refbot_config_path"
	envRevertSecret = "refbot_revert_secret"
)

// gRPC status codes used with runtime.NewError.
const (
	codeInvalidArgument = 3
	codeUnauthenticated = 16
	codeInternal        = 13
)
