package domain

const (
	// HistoryDepth is the number of pre-move snapshots kept per game.
	HistoryDepth = 5

	// MinPlayNumber and MaxPlayNumber bound the numbers coaches submit.
	MinPlayNumber = 1
	MaxPlayNumber = 1500

	// DefaultTimeouts is the number of timeouts each team starts a half with.
	DefaultTimeouts = 3

	// DefaultQuarterLength is the length of a regulation quarter in seconds.
	DefaultQuarterLength = 420
)

// Field positions are measured in yards from the possessing team's own goal line.
const (
	FieldLength       = 100
	KickoffSpot       = 35
	SafetyKickSpot    = 20
	TouchbackSpot     = 25
	PuntTouchbackSpot = 20
	OvertimeSpot      = 75
	ConversionSpot    = 97
	FirstDownYards    = 10
)
