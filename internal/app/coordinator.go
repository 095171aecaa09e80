package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"refbot/internal/domain"
	"refbot/internal/envelope"
	"refbot/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Coordinator connects the Service to its collaborators: it resolves which game
// a message belongs to, serializes work per game, delivers the Decision and
// persists the result.
type Coordinator struct {
	svc       *Service
	store     ports.MatchStore
	transport ports.Transport
	roster    ports.Roster
	signer    *RevertSigner
	locks     gameLocks
}

func NewCoordinator(svc *Service, store ports.MatchStore, transport ports.Transport, roster ports.Roster, signer *RevertSigner) *Coordinator {
	return &Coordinator{svc: svc, store: store, transport: transport, roster: roster, signer: signer}
}

// HandleInbound processes one inbound message end to end.
func (c *Coordinator) HandleInbound(ctx context.Context, logger runtime.Logger, in Inbound) error {
	var env *envelope.Context
	if in.Parent != nil && in.Parent.FromBot {
		env = envelope.Decode(in.Parent.Body)
	}
	if env == nil {
		return c.handleCommand(ctx, logger, in)
	}

	gameID, err := c.store.GameIDForCoach(ctx, in.Author)
	if errors.Is(err, ports.ErrNotFound) {
		logger.Debug("HandleInbound: no game for %s", in.Author)
		return c.reply(ctx, in, "I couldn't find a game you're coaching.")
	}
	if err != nil {
		return fmt.Errorf("lookup game for %s: %w", in.Author, err)
	}

	unlock := c.locks.lock(gameID)
	defer unlock()

	game, err := c.store.LoadGame(ctx, gameID)
	if errors.Is(err, ports.ErrNotFound) {
		return c.reply(ctx, in, fmt.Sprintf("Game %s does not exist.", gameID))
	}
	if err != nil {
		return fmt.Errorf("load game %s: %w", gameID, err)
	}

	logger = logger.WithField("game", game.ID)
	decision := c.svc.HandleReply(ctx, logger, game, in, env)
	if decision.Rejection != nil {
		logger.Info("HandleInbound: rejected reply from %s: %s", in.Author, decision.Rejection.Reason)
	}
	return c.deliver(ctx, logger, game, in, decision)
}

// deliver sends the decision's messages, fills the waiting ledger with the ids
// of tracked messages and saves the game when it changed. Coaches of a game
// that just ended are released from the index.
func (c *Coordinator) deliver(ctx context.Context, logger runtime.Logger, game *domain.Game, in Inbound, d Decision) error {
	var errs []error
	if d.Reply != "" {
		replyID, err := c.transport.Reply(ctx, in.Channel, in.MessageID, d.Reply)
		if err != nil && d.ReplyTracked {
			// Nothing would be left to answer. Keep the stored game so the
			// coach can reply to the previous message again.
			logger.Error("deliver: tracked reply failed, game %s not saved: %v", game.ID, err)
			return fmt.Errorf("reply: %w", err)
		}
		if err != nil {
			logger.Error("deliver: reply failed: %v", err)
			errs = append(errs, fmt.Errorf("reply: %w", err))
		} else if d.ReplyTracked {
			game.Status.Ledger.ResolvePending(replyID)
		}
	}
	for _, out := range d.Outbound {
		ids, err := c.send(ctx, game, out)
		if err != nil {
			logger.Error("deliver: %s message failed: %v", out.Kind, err)
			errs = append(errs, fmt.Errorf("%s message: %w", out.Kind, err))
		}
		if out.Tracked {
			for _, id := range ids {
				game.Status.Ledger.Add(id)
			}
		}
	}
	if d.Changed {
		if game.Status.Ledger.Empty() && !game.Status.IsEnded() && !game.Errored {
			logger.Warn("deliver: game %s is waiting on no message", game.ID)
		}
		if err := c.store.SaveGame(ctx, game); err != nil {
			logger.Error("deliver: save failed: %v", err)
			return errors.Join(append(errs, fmt.Errorf("save game %s: %w", game.ID, err))...)
		}
		if game.Status.IsEnded() {
			if err := c.store.UnindexCoaches(ctx, game.Coaches()); err != nil {
				logger.Error("deliver: unindex coaches failed: %v", err)
				errs = append(errs, fmt.Errorf("unindex coaches of %s: %w", game.ID, err))
			} else {
				logger.Info("deliver: game %s ended, coaches released", game.ID)
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Coordinator) send(ctx context.Context, game *domain.Game, out Outbound) ([]string, error) {
	switch out.Kind {
	case OutboundThread:
		id, err := c.transport.PostThread(ctx, game.Thread, out.Text)
		if err != nil {
			return nil, err
		}
		return []string{id}, nil
	case OutboundPrivate:
		return c.transport.SendPrivate(ctx, game.Team(out.Side).Coaches, out.Subject, out.Text)
	default:
		return nil, fmt.Errorf("unknown outbound kind %q", out.Kind)
	}
}

func (c *Coordinator) reply(ctx context.Context, in Inbound, text string) error {
	if _, err := c.transport.Reply(ctx, in.Channel, in.MessageID, text); err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	return nil
}

// gameLocks hands out one mutex per game id.
type gameLocks struct {
	mu    sync.Mutex
	locks map[string]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

func (l *gameLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*gameLock)
	}
	gl, ok := l.locks[id]
	if !ok {
		gl = &gameLock{}
		l.locks[id] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.mu.Lock()
	return func() {
		gl.mu.Unlock()
		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
