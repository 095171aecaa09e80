package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"refbot/internal/domain"

	"gopkg.in/yaml.v3"
)

// TeamConfig describes one team and its coaches.
type TeamConfig struct {
	Tag     string   `yaml:"tag"`
	Name    string   `yaml:"name"`
	Coaches []string `yaml:"coaches"`
}

// TelegramConfig configures the Telegram transport.
type TelegramConfig struct {
	Token string `yaml:"token"`
	// ThreadChatID is the group chat that hosts public game threads.
	ThreadChatID int64 `yaml:"thread_chat_id"`
	// CoachChats maps coach usernames to their private chat ids.
	CoachChats         map[string]int64 `yaml:"coach_chats"`
	PollTimeoutSeconds int              `yaml:"poll_timeout_seconds"`
	Debug              bool             `yaml:"debug"`
}

type GameConfig struct {
	QuarterLengthSeconds  int    `yaml:"quarter_length_seconds"`
	OvertimeVariant       string `yaml:"overtime_variant"`
	OvertimeLengthSeconds int    `yaml:"overtime_length_seconds"`
	TimeoutsPerHalf       int    `yaml:"timeouts_per_half"`
	// PlayclockHours is how long a coach has to answer a solicitation.
	PlayclockHours int `yaml:"playclock_hours"`
	DeadlineDays   int `yaml:"deadline_days"`

	BotName string   `yaml:"bot_name"`
	Owner   string   `yaml:"owner"`
	Admins  []string `yaml:"admins"`

	RevertSecret   string `yaml:"revert_secret"`
	RevertIssuer   string `yaml:"revert_issuer"`
	RevertTTLHours int    `yaml:"revert_ttl_hours"`

	DatabasePath string `yaml:"database_path"`
	LogLevel     string `yaml:"log_level"`

	Teams    []TeamConfig   `yaml:"teams"`
	Telegram TelegramConfig `yaml:"telegram"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Default returns the configuration used when no file is provided.
func Default() *GameConfig {
	return &GameConfig{
		QuarterLengthSeconds: domain.DefaultQuarterLength,
		OvertimeVariant:      string(domain.OvertimeDistance),
		TimeoutsPerHalf:      domain.DefaultTimeouts,
		PlayclockHours:       24,
		DeadlineDays:         10,
		BotName:              "refbot",
		RevertIssuer:         "refbot",
		RevertTTLHours:       48,
		DatabasePath:         "refbot.db",
		LogLevel:             "info",
		Telegram:             TelegramConfig{PollTimeoutSeconds: 60},
	}
}

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		c, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults when
// nothing was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*GameConfig, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values that would otherwise fail later at game time.
func (c *GameConfig) Validate() error {
	switch domain.OvertimeVariant(c.OvertimeVariant) {
	case domain.OvertimeDistance, domain.OvertimeTime:
	default:
		return fmt.Errorf("invalid overtime_variant %q", c.OvertimeVariant)
	}
	if c.QuarterLengthSeconds <= 0 {
		return fmt.Errorf("quarter_length_seconds must be positive")
	}
	seen := make(map[string]string)
	for _, team := range c.Teams {
		if team.Tag == "" {
			return fmt.Errorf("team %q has no tag", team.Name)
		}
		for _, coach := range team.Coaches {
			key := strings.ToLower(coach)
			if other, ok := seen[key]; ok {
				return fmt.Errorf("coach %s listed for both %s and %s", coach, other, team.Tag)
			}
			seen[key] = team.Tag
		}
	}
	return nil
}

// Rules returns the domain rules derived from this configuration.
func (c *GameConfig) Rules() domain.Rules {
	return domain.Rules{
		QuarterLength:   c.QuarterLengthSeconds,
		OvertimeVariant: domain.OvertimeVariant(c.OvertimeVariant),
		OvertimeLength:  c.OvertimeLengthSeconds,
		Timeouts:        c.TimeoutsPerHalf,
	}
}

// Playclock is how long a coach has to answer.
func (c *GameConfig) Playclock() time.Duration {
	return time.Duration(c.PlayclockHours) * time.Hour
}

// Deadline is the overall time limit of a game.
func (c *GameConfig) Deadline() time.Duration {
	return time.Duration(c.DeadlineDays) * 24 * time.Hour
}

// RevertTTL is how long a signed revert command stays valid.
func (c *GameConfig) RevertTTL() time.Duration {
	return time.Duration(c.RevertTTLHours) * time.Hour
}

// IsAdmin reports whether user may run moderator commands. The owner is always an admin.
func (c *GameConfig) IsAdmin(user string) bool {
	if c.IsOwner(user) {
		return true
	}
	for _, a := range c.Admins {
		if strings.EqualFold(a, user) {
			return true
		}
	}
	return false
}

// IsOwner reports whether user is the bot owner.
func (c *GameConfig) IsOwner(user string) bool {
	return c.Owner != "" && strings.EqualFold(c.Owner, user)
}
