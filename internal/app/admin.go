package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"refbot/internal/domain"
	"refbot/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const maxPauseHours = 999

// handleCommand runs the free-text moderator commands. Only private messages
// are considered; public chatter without a bot parent is ignored.
func (c *Coordinator) handleCommand(ctx context.Context, logger runtime.Logger, in Inbound) error {
	if !in.Private {
		return nil
	}
	cfg := c.svc.Config()
	fields := strings.Fields(in.Body)
	if len(fields) == 0 {
		return c.reply(ctx, in, c.helpText(in.Author))
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	logger = logger.WithField("command", cmd)

	var text string
	switch {
	case cmd == "newgame" && cfg.IsAdmin(in.Author):
		text = c.newGame(ctx, logger, args)
	case cmd == "newgame":
		text = "Only admins can start games."
	case cmd == "kick" && cfg.IsOwner(in.Author):
		text = c.withGame(ctx, logger, args, c.kick)
	case cmd == "pause" && cfg.IsAdmin(in.Author):
		text = c.withGame(ctx, logger, args, c.pause)
	case cmd == "abandon" && cfg.IsAdmin(in.Author):
		text = c.withGame(ctx, logger, args, c.abandon)
	case cmd == "status" && cfg.IsAdmin(in.Author):
		text = c.withGame(ctx, logger, args, c.status)
	case cmd == "revert" && cfg.IsAdmin(in.Author):
		text = c.withGame(ctx, logger, args, c.revert)
	default:
		text = c.helpText(in.Author)
	}
	return c.reply(ctx, in, text)
}

func (c *Coordinator) helpText(user string) string {
	cfg := c.svc.Config()
	if !cfg.IsAdmin(user) {
		return "I couldn't understand your message. Reply to one of my messages to play."
	}
	return strings.Join([]string{
		"Commands:",
		"newgame <home coach> <away coach>",
		"status <game>",
		"pause <game> <hours>",
		"abandon <game>",
		"revert <game> <index> <token>",
		"kick <game> (owner only)",
	}, "\n")
}

func normalizeCoach(name string) string {
	name = strings.TrimPrefix(name, "@")
	name = strings.TrimPrefix(name, "/u/")
	return strings.ToLower(name)
}

func (c *Coordinator) newGame(ctx context.Context, logger runtime.Logger, args []string) string {
	if len(args) < 2 {
		return "Please resend the message and specify two coaches: newgame <home coach> <away coach>"
	}
	homeCoach, awayCoach := normalizeCoach(args[0]), normalizeCoach(args[1])
	if homeCoach == awayCoach {
		return "Both coaches were the same."
	}

	teams := make([]domain.Team, 2)
	for i, coach := range []string{homeCoach, awayCoach} {
		role := [2]string{"home", "away"}[i]
		team, err := c.roster.TeamForCoach(ctx, coach)
		if errors.Is(err, ports.ErrNotFound) {
			return fmt.Sprintf("The %s coach does not have a team.", role)
		}
		if err != nil {
			logger.Error("newGame: roster lookup for %s failed: %v", coach, err)
			return "I couldn't look up the teams, please try again later."
		}
		for _, tc := range team.Coaches {
			_, err := c.store.GameIDForCoach(ctx, tc)
			if err == nil {
				return fmt.Sprintf("The %s coach is already in a game.", role)
			}
			if !errors.Is(err, ports.ErrNotFound) {
				logger.Error("newGame: index lookup for %s failed: %v", tc, err)
				return "I couldn't check the coaches' games, please try again later."
			}
		}
		teams[i] = team
	}
	if teams[0].Tag == teams[1].Tag {
		return "You can't list two coaches that are on the same team."
	}

	id := c.svc.NewGameID()
	game := c.svc.NewGame(id, teams[0], teams[1])
	logger = logger.WithField("game", id)

	unlock := c.locks.lock(id)
	defer unlock()

	title := fmt.Sprintf("[GAME THREAD] %s @ %s", game.Away.Name, game.Home.Name)
	body := fmt.Sprintf("%s @ %s\n\nThe game starts when %s calls the coin toss.",
		game.Away.Name, game.Home.Name, coachString(game, domain.Away))
	thread, err := c.transport.CreateThread(ctx, id, title, body)
	if err != nil {
		logger.Error("newGame: create thread failed: %v", err)
		return "I couldn't create the game thread, please try again later."
	}
	game.Thread = thread

	d := Decision{Outbound: []Outbound{c.svc.CoinTossPrompt(game)}, Changed: true}
	if err := c.deliver(ctx, logger, game, Inbound{}, d); err != nil {
		return fmt.Sprintf("Game %s was created but not fully set up: %v", id, err)
	}
	if err := c.store.IndexCoaches(ctx, id, game.Coaches()); err != nil {
		logger.Error("newGame: index coaches failed: %v", err)
		return fmt.Sprintf("Game %s was created but the coaches could not be registered: %v", id, err)
	}
	logger.Info("newGame: started %s @ %s", game.Away.Tag, game.Home.Tag)
	return fmt.Sprintf("Game %s started: %s @ %s.", id, game.Away.Name, game.Home.Name)
}

// gameCommand changes a loaded game and reports whether it must be saved.
type gameCommand func(ctx context.Context, logger runtime.Logger, game *domain.Game, args []string) (string, bool)

func (c *Coordinator) withGame(ctx context.Context, logger runtime.Logger, args []string, fn gameCommand) string {
	if len(args) < 1 {
		return "Couldn't find a game id in your message."
	}
	id := args[0]
	unlock := c.locks.lock(id)
	defer unlock()

	game, err := c.store.LoadGame(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return fmt.Sprintf("Game %s does not exist.", id)
	}
	if err != nil {
		logger.Error("withGame: load %s failed: %v", id, err)
		return fmt.Sprintf("I couldn't load game %s.", id)
	}
	logger = logger.WithField("game", id)

	text, changed := fn(ctx, logger, game, args[1:])
	if changed {
		if err := c.store.SaveGame(ctx, game); err != nil {
			logger.Error("withGame: save failed: %v", err)
			return fmt.Sprintf("I couldn't save game %s: %v", id, err)
		}
	}
	return text
}

func (c *Coordinator) kick(_ context.Context, logger runtime.Logger, game *domain.Game, _ []string) (string, bool) {
	if !game.Errored {
		return fmt.Sprintf("Game %s is not in an error state.", game.ID), false
	}
	game.Errored = false
	logger.Info("kick: cleared error state")
	return fmt.Sprintf("Game %s kicked.", game.ID), true
}

func (c *Coordinator) pause(_ context.Context, logger runtime.Logger, game *domain.Game, args []string) (string, bool) {
	if len(args) < 1 {
		return "Couldn't find a number of hours in your message.", false
	}
	hours, err := strconv.Atoi(args[0])
	if err != nil || hours < 1 || hours > maxPauseHours {
		return fmt.Sprintf("%q is not a valid number of hours.", args[0]), false
	}
	extend := time.Duration(hours) * time.Hour
	now := c.svc.now()
	if game.Playclock.Before(now) {
		game.Playclock = now
	}
	game.Playclock = game.Playclock.Add(extend)
	game.Deadline = game.Deadline.Add(extend)
	logger.Info("pause: extended by %d hours", hours)
	return fmt.Sprintf("Game %s paused for %d hours.", game.ID, hours), true
}

func (c *Coordinator) abandon(ctx context.Context, logger runtime.Logger, game *domain.Game, _ []string) (string, bool) {
	game.Abandoned = true
	if err := c.store.UnindexCoaches(ctx, game.Coaches()); err != nil {
		logger.Error("abandon: unindex coaches failed: %v", err)
	}
	logger.Info("abandon: game abandoned")
	return fmt.Sprintf("Game %s abandoned.", game.ID), true
}

func (c *Coordinator) status(_ context.Context, logger runtime.Logger, game *domain.Game, _ []string) (string, bool) {
	st := &game.Status
	lines := []string{
		fmt.Sprintf("Game %s: %s @ %s", game.ID, game.Away.Name, game.Home.Name),
		scoreString(game) + ".",
	}
	switch {
	case game.Abandoned:
		lines = append(lines, "The game was abandoned.")
	case st.IsEnded():
		lines = append(lines, "The game is over.")
	default:
		lines = append(lines, currentPlayString(game), waitingOnString(game))
	}
	if game.Errored {
		lines = append(lines, "The game is in an error state.")
	}
	lines = append(lines, fmt.Sprintf("Playclock %s, deadline %s.", renderTime(game.Playclock), renderTime(game.Deadline)))

	if game.History.Len() == 0 {
		return strings.Join(append(lines, "No history."), "\n\n"), false
	}
	history := []string{"History (newest first):"}
	for i, e := range game.History.Entries {
		s := e.State
		line := fmt.Sprintf("%d. before %s: %s %s, %s %s, %s & %d on the %s",
			i, e.Tag, domain.RenderQuarter(s.Quarter), domain.RenderClock(s.Clock),
			strings.ToLower(string(s.Action)), s.WaitingOn, domain.RenderDown(s.Down), s.Distance,
			domain.RenderLocation(s.Location))
		token, err := c.signer.Sign(game.ID, i, e.Tag)
		if err != nil {
			logger.Warn("status: cannot sign revert %d: %v", i, err)
			line += " (revert unavailable)"
		} else {
			line += fmt.Sprintf(": `revert %s %d %s`", game.ID, i, token)
		}
		history = append(history, line)
	}
	lines = append(lines, strings.Join(history, "\n"))
	return strings.Join(lines, "\n\n"), false
}

func (c *Coordinator) revert(ctx context.Context, logger runtime.Logger, game *domain.Game, args []string) (string, bool) {
	if len(args) < 2 {
		return "Please use the revert command from a status report.", false
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Sprintf("%q is not a history index.", args[0]), false
	}
	tag, err := c.signer.Verify(args[1], game.ID, index)
	if err != nil {
		logger.Warn("revert: %v", err)
		return "That revert command is not valid, request a new status report.", false
	}
	entry, err := game.History.Entry(index)
	if err != nil || entry.Tag != tag {
		return "That revert command is out of date, request a new status report.", false
	}
	wasEnded := game.Status.IsEnded() && !game.Abandoned
	if wasEnded {
		if msg := c.coachesFree(ctx, logger, game); msg != "" {
			return msg, false
		}
	}
	applied, err := game.History.Rollback(&game.Status, index)
	if err != nil {
		return fmt.Sprintf("Couldn't revert game %s: %v", game.ID, err), false
	}
	if !applied {
		return fmt.Sprintf("Game %s was already reverted to entry %d.", game.ID, index), false
	}
	if wasEnded && !game.Status.IsEnded() {
		if err := c.store.IndexCoaches(ctx, game.ID, game.Coaches()); err != nil {
			logger.Error("revert: index coaches failed: %v", err)
		}
	}
	logger.Info("revert: rolled back to before %s", tag)
	return fmt.Sprintf("Game %s reverted to before %s.\n\n%s\n\n%s",
		game.ID, tag, currentPlayString(game), waitingOnString(game)), true
}

// coachesFree reports why an ended game cannot be resumed, or "" when none of
// its coaches has moved on to another game.
func (c *Coordinator) coachesFree(ctx context.Context, logger runtime.Logger, game *domain.Game) string {
	for _, coach := range game.Coaches() {
		other, err := c.store.GameIDForCoach(ctx, coach)
		switch {
		case errors.Is(err, ports.ErrNotFound), err == nil && other == game.ID:
		case err != nil:
			logger.Error("revert: index lookup for %s failed: %v", coach, err)
			return "I couldn't check the coaches' games, please try again later."
		default:
			return fmt.Sprintf("Game %s can't be resumed, %s is already in game %s.", game.ID, coach, other)
		}
	}
	return ""
}
