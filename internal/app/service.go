package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"refbot/internal/config"
	"refbot/internal/domain"
	"refbot/internal/envelope"
	"refbot/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Service contains the referee use-cases operating on game records. It never
// performs I/O besides calling the play resolver; outbound messages are returned
// in a Decision for the caller to deliver.
type Service struct {
	mu       sync.Mutex
	rng      *rand.Rand
	resolver ports.PlayResolver
	cfg      *config.GameConfig
	now      func() time.Time
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, resolver ports.PlayResolver, cfg *config.GameConfig) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Service{rng: rng, resolver: resolver, cfg: cfg, now: time.Now}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Config returns the configuration the service runs with.
func (s *Service) Config() *config.GameConfig {
	return s.cfg
}

func (s *Service) coinToss() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(2) == 0
}

// NewGameID returns a short random game id.
func (s *Service) NewGameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("%08x", s.rng.Uint32())
}

// NewGame creates a game waiting on the away team's coin toss call.
func (s *Service) NewGame(id string, home, away domain.Team) *domain.Game {
	now := s.now()
	return &domain.Game{
		ID:        id,
		Home:      home,
		Away:      away,
		Status:    domain.NewMatchState(s.cfg.Rules()),
		Playclock: now.Add(s.cfg.Playclock()),
		Deadline:  now.Add(s.cfg.Deadline()),
	}
}

// CoinTossPrompt is the solicitation that opens a game or an overtime period.
func (s *Service) CoinTossPrompt(game *domain.Game) Outbound {
	text := fmt.Sprintf("%s, you're away, call **heads** or **tails** in the air.", coachString(game, domain.Away))
	if game.Status.IsOvertime() {
		text = "Overtime has started! " + text
	}
	return Outbound{
		Kind:    OutboundThread,
		Text:    envelope.Encode(text, &envelope.Context{Action: domain.ActionCoin, Game: game.ID}),
		Tracked: true,
	}
}

// HandleReply validates a coach's reply against the game's pending solicitation
// and, if accepted, advances the game by one turn.
func (s *Service) HandleReply(ctx context.Context, logger runtime.Logger, game *domain.Game, in Inbound, env *envelope.Context) Decision {
	st := &game.Status
	if game.Abandoned {
		return reject(RejectAbandoned, "This game has been abandoned.")
	}
	if st.IsEnded() {
		msg := "This game is over."
		if st.Winner != nil {
			msg = fmt.Sprintf("This game is over, %s won. %s.", game.Team(*st.Winner).Name, scoreString(game))
		}
		return reject(RejectGameOver, msg)
	}
	if game.Errored {
		return reject(RejectErrored, fmt.Sprintf(
			"This game is currently in an error state, %s has been contacted to take a look.", s.ownerString()))
	}
	side, ok := game.CoachSide(in.Author)
	if !ok {
		return reject(RejectNotCoach, "You're not a coach in this game.")
	}
	if env.Game != "" && env.Game != game.ID {
		return reject(RejectWrongGame, "That message belongs to a different game.")
	}
	if env.Action != st.Action {
		return reject(RejectWrongAction, fmt.Sprintf(
			"I'm not waiting on a '%s' for this game, are you sure you replied to the right message?",
			strings.ToLower(string(env.Action))))
	}
	if side != st.WaitingOn {
		return reject(RejectWrongSide, fmt.Sprintf(
			"I'm not waiting on a message from you, I'm waiting on %s for %s.",
			game.Team(st.WaitingOn).Name, actionDescription(st)))
	}
	source := env.Source
	if source == "" && in.Parent != nil {
		source = in.Parent.ID
	}
	if !st.Ledger.Contains(source) {
		return reject(RejectStaleMessage, "I'm not waiting on a reply to this message. Please respond to the latest one.")
	}

	h := turn{svc: s, logger: logger, game: game, in: in, side: side, source: source}
	switch {
	case st.Action == domain.ActionCoin:
		return h.coin()
	case st.Action == domain.ActionDefer:
		return h.deferChoice()
	case domain.IsPlayAction(st.Action) && st.WaitingOn != st.Possession:
		return h.defenseNumber()
	case domain.IsPlayAction(st.Action):
		return h.offensePlay(ctx)
	default:
		logger.Warn("HandleReply: no handler for action %s", st.Action)
		return reject(RejectWrongAction, "I'm not expecting anything for this game right now.")
	}
}

func (s *Service) ownerString() string {
	if s.cfg.Owner == "" {
		return "the owner"
	}
	return "@" + s.cfg.Owner
}

func reject(reason RejectReason, message string) Decision {
	return Decision{Reply: message, Rejection: &Rejection{Reason: reason, Message: message}}
}

// turn carries one accepted reply through its handler.
type turn struct {
	svc    *Service
	logger runtime.Logger
	game   *domain.Game
	in     Inbound
	side   domain.Side
	source string
}

// invalid rejects unusable input. The reply re-embeds the solicitation with the
// original source id, so the coach can answer the correction directly.
func (t *turn) invalid(message string) Decision {
	text := envelope.Encode(message, &envelope.Context{
		Action: t.game.Status.Action,
		Source: t.source,
		Game:   t.game.ID,
	})
	d := reject(RejectInvalidInput, message)
	d.Reply = text
	return d
}

func (t *turn) snapshot() {
	t.game.History.Snapshot(t.game.Status, t.in.MessageID)
}

func (t *turn) refreshPlayclock() {
	t.game.Playclock = t.svc.now().Add(t.svc.cfg.Playclock())
}

func (t *turn) coin() Decision {
	if t.in.Private {
		return reject(RejectWrongChannel, "Please call the coin toss in the game thread.")
	}
	match := envelope.FindKeyword(coinKeywords, t.in.Body)
	switch match.Status {
	case envelope.KeywordNone:
		return t.invalid("I couldn't find **heads** or **tails** in your message.")
	case envelope.KeywordAmbiguous:
		return t.invalid("I found both heads and tails in your message. Please reply with just one of them.")
	}
	t.snapshot()

	st := &t.game.Status
	called := match.Value == "heads"
	chooser := domain.Home
	if called == t.svc.coinToss() {
		chooser = domain.Away
	}
	t.logger.Debug("coin: %s called %s, %s won the toss", t.in.Author, match.Value, chooser)

	st.Action = domain.ActionDefer
	st.WaitingOn = chooser
	st.Ledger.SetPending()
	t.refreshPlayclock()

	question := "do you want to **receive** or **defer**?"
	if st.QuarterType == domain.QuarterOvertimeNormal {
		question = "do you want to **defend** or **attack**?"
	}
	text := fmt.Sprintf("%s, %s won the toss, %s", coachString(t.game, chooser), t.game.Team(chooser).Name, question)
	return Decision{
		Reply:        envelope.Encode(text, &envelope.Context{Action: domain.ActionDefer, Game: t.game.ID}),
		ReplyTracked: true,
		Changed:      true,
	}
}

func (t *turn) deferChoice() Decision {
	if t.in.Private {
		return reject(RejectWrongChannel, "Please make your choice in the game thread.")
	}
	st := &t.game.Status
	distanceOvertime := st.QuarterType == domain.QuarterOvertimeNormal
	keywords := deferKeywords
	if distanceOvertime {
		keywords = overtimeKeywords
	}
	match := envelope.FindKeyword(keywords, t.in.Body)
	switch match.Status {
	case envelope.KeywordNone:
		return t.invalid(fmt.Sprintf("I couldn't find **%s** or **%s** in your message.", keywords[0].Name, keywords[1].Name))
	case envelope.KeywordAmbiguous:
		return t.invalid(fmt.Sprintf("I found both %s and %s in your message. Please reply with just one of them.", keywords[0].Name, keywords[1].Name))
	}
	t.snapshot()

	deferred := match.Value == "defer" || match.Value == "defend"
	team := t.game.Team(t.side).Name
	var opening string
	switch {
	case distanceOvertime && deferred:
		st.SetOvertimeDrive(t.side.Negate())
		st.ReceivingNext = t.side
		opening = fmt.Sprintf("%s deferred and will attack next. Overtime has started!", team)
	case distanceOvertime:
		st.SetOvertimeDrive(t.side)
		st.ReceivingNext = t.side.Negate()
		opening = fmt.Sprintf("%s elected to attack. Overtime has started!", team)
	case deferred:
		st.SetKickoff(t.side)
		st.ReceivingNext = t.side
		opening = fmt.Sprintf("%s deferred and will receive the ball in the second half. The game has started!", team)
	default:
		st.SetKickoff(t.side.Negate())
		st.ReceivingNext = t.side.Negate()
		opening = fmt.Sprintf("%s elected to receive. The game has started!", team)
	}
	if st.IsOvertime() && !distanceOvertime {
		opening = strings.Replace(opening, "The game has started!", "Overtime has started!", 1)
	}
	t.refreshPlayclock()

	return Decision{
		Reply:    strings.Join([]string{opening, currentPlayString(t.game), waitingOnString(t.game)}, "\n\n"),
		Outbound: []Outbound{t.defensePrompt()},
		Changed:  true,
	}
}

// defensePrompt asks the defense for its number privately and clears the ledger
// so only the new private messages are accepted.
func (t *turn) defensePrompt() Outbound {
	st := &t.game.Status
	st.Ledger.Reset()
	defense := st.Possession.Negate()
	text := fmt.Sprintf("%s\n\nReply with a number between **%d** and **%d**. You have until %s.",
		currentPlayString(t.game), domain.MinPlayNumber, domain.MaxPlayNumber, renderTime(t.game.Playclock))
	if st.State(defense).Timeouts > 0 {
		text += " Include **timeout** to request a timeout."
	}
	return Outbound{
		Kind:    OutboundPrivate,
		Side:    defense,
		Subject: fmt.Sprintf("%s @ %s: defensive number", t.game.Away.Name, t.game.Home.Name),
		Text:    envelope.Encode(text, &envelope.Context{Action: st.Action, Game: t.game.ID}),
		Tracked: true,
	}
}

func (t *turn) defenseNumber() Decision {
	if !t.in.Private {
		return reject(RejectWrongChannel, "Please send your defensive number in a private message, not in the game thread.")
	}
	number, err := envelope.ExtractNumber(t.in.Body)
	if err != nil {
		return t.invalid(numberMessage(err))
	}
	t.snapshot()

	st := &t.game.Status
	st.DefensiveNumber = number
	st.DefensiveSubmitter = t.in.Author

	result := []string{fmt.Sprintf("I've got %d as your number.", number)}
	if envelope.ContainsAny(t.in.Body, timeoutKeyword) {
		defense := st.State(t.side)
		if defense.Timeouts > 0 {
			defense.RequestedTimeout = domain.TimeoutRequested
			result = append(result, "Timeout requested successfully.")
		} else {
			result = append(result, "You requested a timeout, but you don't have any left.")
		}
	}

	st.WaitingOn = st.Possession
	st.Ledger.Reset()
	t.refreshPlayclock()
	t.logger.Debug("defenseNumber: %s submitted for %s", t.in.Author, t.side)

	prompt := fmt.Sprintf("%s has submitted their number. %s you're up. You have until %s.\n\n%s\n\n%s reply with %s and your number.",
		t.game.Team(t.side).Name,
		t.game.Team(st.Possession).Name,
		renderTime(t.game.Playclock),
		currentPlayString(t.game),
		coachString(t.game, st.Possession),
		suggestedPlays(st.Action))
	return Decision{
		Reply: strings.Join(result, "\n\n"),
		Outbound: []Outbound{{
			Kind:    OutboundThread,
			Text:    envelope.Encode(prompt, &envelope.Context{Action: st.Action, Game: t.game.ID}),
			Tracked: true,
		}},
		Changed: true,
	}
}

func (t *turn) offensePlay(ctx context.Context) Decision {
	if t.in.Private {
		return reject(RejectWrongChannel, "Please reply with your play in the game thread.")
	}
	st := &t.game.Status
	keywords, byName := keywordsFor(st.Action)
	match := envelope.FindKeyword(keywords, t.in.Body)
	switch match.Status {
	case envelope.KeywordNone:
		return t.invalid(fmt.Sprintf("I couldn't find a play in your message. Reply with %s.", suggestedPlays(st.Action)))
	case envelope.KeywordAmbiguous:
		return t.invalid("I found multiple plays in your message. Please repost it with just the play and number.")
	}
	play := byName[match.Value]

	number, err := envelope.ExtractNumber(t.in.Body)
	if err != nil {
		if !domain.IsTimePlay(play) {
			return t.invalid(numberMessage(err))
		}
		number = 0
	}
	timeOption := domain.TimeNormal
	switch {
	case envelope.ContainsAny(t.in.Body, chewPhrases...):
		timeOption = domain.TimeChew
	case envelope.ContainsAny(t.in.Body, hurryPhrases...):
		timeOption = domain.TimeHurry
	}
	t.snapshot()

	var notes []string
	if envelope.ContainsAny(t.in.Body, timeoutKeyword) {
		offense := st.State(st.Possession)
		if offense.Timeouts > 0 {
			offense.RequestedTimeout = domain.TimeoutRequested
		} else {
			notes = append(notes, "The offense requested a timeout, but they don't have any left.")
		}
	}

	req := st.NewPlayRequest(play, timeOption, number)
	out, err := t.svc.resolver.Resolve(ctx, req)
	if err == nil && out.Result == domain.ResultError {
		err = fmt.Errorf("resolver returned %s", domain.ResultError)
	}
	if err != nil {
		return t.resolverFailed(req, err)
	}

	tr := st.ApplyOutcome(req, out, t.svc.cfg.Rules())
	t.logger.Info("offensePlay: %s %s -> %s %d yards", st.Plays[len(st.Plays)-1].Possession, play, out.Result, out.Yards)

	result := []string{resultString(t.game, req, out, tr)}
	result = append(result, notes...)
	for _, msg := range []string{timeoutString("offense", tr.OffenseTimeout), timeoutString("defense", tr.DefenseTimeout)} {
		if msg != "" {
			result = append(result, msg)
		}
	}
	t.refreshPlayclock()

	d := Decision{Changed: true}
	switch {
	case st.IsEnded():
		winner := t.game.Team(*st.Winner).Name
		result = append(result, fmt.Sprintf("The game is over! %s wins. Final score: %s.", winner, scoreString(t.game)))
		d.Outbound = append(d.Outbound, Outbound{
			Kind: OutboundThread,
			Text: fmt.Sprintf("Final: %s. Congratulations to %s!", scoreString(t.game), winner),
		})
	case st.Action == domain.ActionOvertime:
		st.BeginCoinToss()
		d.Outbound = append(d.Outbound, t.svc.CoinTossPrompt(t.game))
	case domain.IsPlayAction(st.Action):
		result = append(result, currentPlayString(t.game), waitingOnString(t.game))
		d.Outbound = append(d.Outbound, t.defensePrompt())
	}
	d.Reply = strings.Join(result, "\n\n")
	return d
}

// resolverFailed restores the pre-move state, logs the failure in the play log
// and parks the game for a moderator. The turn stays outstanding.
func (t *turn) resolverFailed(req domain.PlayRequest, err error) Decision {
	t.logger.Error("offensePlay: play could not be resolved: %v", err)
	entry, entryErr := t.game.History.Entry(0)
	if entryErr == nil {
		t.game.Status = entry.State.Clone()
		t.game.History.Drop()
	}
	t.game.Status.Plays = append(t.game.Status.Plays, domain.PlaySummary{
		Quarter:       req.Quarter,
		Clock:         req.Clock,
		Possession:    t.game.Status.Possession,
		Location:      req.Location,
		Down:          req.Down,
		Distance:      req.Distance,
		Play:          req.Play,
		TimeOption:    req.TimeOption,
		OffenseNumber: req.OffenseNumber,
		DefenseNumber: req.DefenseNumber,
		Result:        domain.ResultError,
	})
	t.game.Errored = true
	return Decision{
		Reply: fmt.Sprintf("Something went wrong resolving that play. The game is paused and %s has been contacted to take a look. Your play has not been used.",
			t.svc.ownerString()),
		Changed: true,
	}
}

func numberMessage(err error) string {
	var ne *envelope.NumberError
	if errors.As(err, &ne) {
		return ne.Message()
	}
	return err.Error()
}
