package app

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"refbot/internal/config"
	"refbot/internal/domain"
	"refbot/internal/envelope"
	"refbot/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t         *testing.T
	svc       *Service
	coord     *Coordinator
	store     *memStore
	transport *fakeTransport
	resolver  *fakeResolver
	seq       int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Owner = "boss"
	cfg.Admins = []string{"mod"}
	cfg.Teams = []config.TeamConfig{
		{Tag: "home", Name: "Home U", Coaches: []string{"hc", "hc2"}},
		{Tag: "away", Name: "Away St", Coaches: []string{"ac", "ac2"}},
		{Tag: "other", Name: "Other Tech", Coaches: []string{"oc"}},
	}
	res := &fakeResolver{out: domain.Outcome{Result: domain.ResultGain, Yards: 3, PlayTime: 20}}
	svc := NewService(rand.New(rand.NewSource(testSeed)), res, cfg)
	svc.SetClock(func() time.Time { return fixedNow })
	h := &harness{
		t:         t,
		svc:       svc,
		store:     newMemStore(),
		transport: &fakeTransport{},
		resolver:  res,
	}
	signer := NewRevertSigner("test-secret", "refbot", time.Hour)
	h.coord = NewCoordinator(svc, h.store, h.transport, config.NewStaticRoster(cfg.Teams), signer)
	return h
}

// command sends a private moderator message and returns the bot's answer.
func (h *harness) command(author, body string) string {
	h.t.Helper()
	h.seq++
	in := Inbound{MessageID: fmt.Sprintf("cmd-%d", h.seq), Channel: "dm", Author: author, Body: body, Private: true}
	require.NoError(h.t, h.coord.HandleInbound(context.Background(), noopLogger{}, in))
	replies := h.transport.byKind("reply")
	require.NotEmpty(h.t, replies)
	return replies[len(replies)-1].Text
}

// answer replies to a message the bot sent earlier.
func (h *harness) answer(author string, parent sentMessage, body string, private bool) error {
	h.t.Helper()
	h.seq++
	in := Inbound{
		MessageID: fmt.Sprintf("msg-%d", h.seq),
		Channel:   "thread",
		Author:    author,
		Body:      body,
		Private:   private,
		Parent:    &Parent{ID: parent.ID, Body: parent.Text, FromBot: true},
	}
	return h.coord.HandleInbound(context.Background(), noopLogger{}, in)
}

func (h *harness) startGame() string {
	h.t.Helper()
	text := h.command("mod", "newgame hc ac")
	require.Contains(h.t, text, "started")
	id, err := h.store.GameIDForCoach(context.Background(), "hc")
	require.NoError(h.t, err)
	return id
}

func (h *harness) load(id string) *domain.Game {
	h.t.Helper()
	game, err := h.store.LoadGame(context.Background(), id)
	require.NoError(h.t, err)
	return game
}

func (h *harness) coachFor(game *domain.Game, side domain.Side) string {
	return game.Team(side).Coaches[0]
}

func lastOf(msgs []sentMessage) sentMessage {
	return msgs[len(msgs)-1]
}

func TestCoordinatorNewGamePostsCoinToss(t *testing.T) {
	h := newHarness(t)
	id := h.startGame()

	game := h.load(id)
	assert.Equal(t, "thread-"+id, game.Thread)
	assert.Equal(t, domain.ActionCoin, game.Status.Action)

	posts := h.transport.byKind("thread")
	require.Len(t, posts, 1)
	assert.Equal(t, game.Thread, posts[0].Target)
	assert.Contains(t, posts[0].Text, "call **heads** or **tails**")
	assert.Equal(t, []string{posts[0].ID}, game.Status.Ledger.IDs)

	for _, coach := range []string{"hc", "hc2", "ac", "ac2"} {
		got, err := h.store.GameIDForCoach(context.Background(), coach)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestCoordinatorFullExchange(t *testing.T) {
	h := newHarness(t)
	id := h.startGame()
	coinPost := lastOf(h.transport.byKind("thread"))

	require.NoError(t, h.answer("ac2", coinPost, "tails", false))
	game := h.load(id)
	require.Equal(t, domain.ActionDefer, game.Status.Action)
	deferReply := lastOf(h.transport.byKind("reply"))
	assert.Equal(t, []string{deferReply.ID}, game.Status.Ledger.IDs, "tracked reply id fills the pending slot")
	assert.False(t, game.Status.Ledger.PendingReply)

	chooser := h.coachFor(game, game.Status.WaitingOn)
	require.NoError(t, h.answer(chooser, deferReply, "receive", false))
	game = h.load(id)
	require.Equal(t, domain.ActionKickoff, game.Status.Action)

	dms := h.transport.byKind("private")
	require.Len(t, dms, 2, "every coach of the receiving team gets the prompt")
	assert.ElementsMatch(t, []string{dms[0].ID, dms[1].ID}, game.Status.Ledger.IDs)
	receiving := game.Team(game.Status.WaitingOn)
	assert.ElementsMatch(t, receiving.Coaches, []string{dms[0].Recipient, dms[1].Recipient})

	// Either coach may answer either copy.
	require.NoError(t, h.answer(receiving.Coaches[0], dms[1], "321", true))
	game = h.load(id)
	assert.Equal(t, 321, game.Status.DefensiveNumber)
	assert.Equal(t, game.Status.Possession, game.Status.WaitingOn)

	offensePrompt := lastOf(h.transport.byKind("thread"))
	assert.Equal(t, []string{offensePrompt.ID}, game.Status.Ledger.IDs)

	h.resolver.out = domain.Outcome{Result: domain.ResultTouchback, PlayTime: 5}
	require.NoError(t, h.answer(h.coachFor(game, game.Status.Possession), offensePrompt, "squib 10", false))
	game = h.load(id)
	assert.Equal(t, domain.ActionPlay, game.Status.Action)
	assert.Equal(t, domain.TouchbackSpot, game.Status.Location)
	assert.Equal(t, 4, game.History.Len())
	require.Len(t, h.resolver.reqs, 1)
	assert.Equal(t, domain.PlayKickoffSquib, h.resolver.reqs[0].Play)
	assert.Equal(t, 321, h.resolver.reqs[0].DefenseNumber)
}

func TestCoordinatorRejectionDoesNotSave(t *testing.T) {
	h := newHarness(t)
	id := h.startGame()
	coinPost := lastOf(h.transport.byKind("thread"))
	saves := h.store.saves

	require.NoError(t, h.answer("hc", coinPost, "heads", false))

	assert.Equal(t, saves, h.store.saves)
	assert.Equal(t, domain.ActionCoin, h.load(id).Status.Action)
	assert.Contains(t, lastOf(h.transport.byKind("reply")).Text, "I'm not waiting on a message from you")
}

func TestCoordinatorUnknownCoach(t *testing.T) {
	h := newHarness(t)
	h.startGame()
	coinPost := lastOf(h.transport.byKind("thread"))

	require.NoError(t, h.answer("oc", coinPost, "heads", false))
	assert.Equal(t, "I couldn't find a game you're coaching.", lastOf(h.transport.byKind("reply")).Text)
}

func TestCoordinatorPublicChatterIgnored(t *testing.T) {
	h := newHarness(t)
	in := Inbound{MessageID: "x", Channel: "thread", Author: "ac", Body: "good game everyone"}
	require.NoError(t, h.coord.HandleInbound(context.Background(), noopLogger{}, in))
	assert.Empty(t, h.transport.sent)
}

func TestCoordinatorTrackedReplyFailureKeepsGame(t *testing.T) {
	h := newHarness(t)
	id := h.startGame()
	coinPost := lastOf(h.transport.byKind("thread"))
	saves := h.store.saves
	h.transport.failReply = true

	err := h.answer("ac", coinPost, "heads", false)
	require.Error(t, err)

	assert.Equal(t, saves, h.store.saves)
	game := h.load(id)
	assert.Equal(t, domain.ActionCoin, game.Status.Action)
	assert.Equal(t, []string{coinPost.ID}, game.Status.Ledger.IDs)
	assert.Zero(t, game.History.Len())

	// The coach can call the toss again once the transport recovers.
	h.transport.failReply = false
	require.NoError(t, h.answer("ac", coinPost, "heads", false))
	game = h.load(id)
	assert.Equal(t, domain.ActionDefer, game.Status.Action)
	assert.Equal(t, []string{lastOf(h.transport.byKind("reply")).ID}, game.Status.Ledger.IDs)
}

func TestCoordinatorUntrackedReplyFailureStillSaves(t *testing.T) {
	h := newHarness(t)
	id := h.startGame()
	require.NoError(t, h.answer("ac", lastOf(h.transport.byKind("thread")), "heads", false))
	game := h.load(id)
	deferReply := lastOf(h.transport.byKind("reply"))
	h.transport.failReply = true

	err := h.answer(h.coachFor(game, game.Status.WaitingOn), deferReply, "receive", false)
	require.Error(t, err)

	game = h.load(id)
	assert.Equal(t, domain.ActionKickoff, game.Status.Action)
	assert.Len(t, game.Status.Ledger.IDs, 2, "the private prompts were still sent and tracked")
}

// endingGame puts a started game at home's last play of regulation, trailing
// 0-7 with ten seconds left, and returns the message home answers.
func (h *harness) endingGame(id string) sentMessage {
	h.t.Helper()
	game := h.load(id)
	st := &game.Status
	st.Action = domain.ActionPlay
	st.QuarterType = domain.QuarterNormal
	st.Quarter = 4
	st.Clock = 10
	st.Possession = domain.Home
	st.WaitingOn = domain.Home
	st.Location = 30
	st.Down = 1
	st.Distance = 10
	st.DefensiveNumber = 500
	st.Away.Points = 7
	st.Ledger.SetSingle("offense-msg")
	require.NoError(h.t, h.store.SaveGame(context.Background(), game))
	return sentMessage{
		ID:   "offense-msg",
		Text: envelope.Encode("Home U you're up.", &envelope.Context{Action: domain.ActionPlay, Game: id}),
	}
}

func TestCoordinatorGameEndReleasesCoaches(t *testing.T) {
	h := newHarness(t)
	id := h.startGame()
	parent := h.endingGame(id)

	require.NoError(t, h.answer("hc", parent, "run 5", false))
	game := h.load(id)
	require.True(t, game.Status.IsEnded())
	assert.Contains(t, lastOf(h.transport.byKind("reply")).Text, "Away St wins")

	for _, coach := range game.Coaches() {
		_, err := h.store.GameIDForCoach(context.Background(), coach)
		assert.ErrorIs(t, err, ports.ErrNotFound, coach)
	}
	assert.Contains(t, h.command("mod", "newgame hc oc"), "started")
	assert.Contains(t, h.command("mod", "newgame ac2 oc"), "The away coach is already in a game.")
}

func TestGameLocksReleaseEntries(t *testing.T) {
	var l gameLocks
	unlockA := l.lock("a")
	unlockB := l.lock("b")
	assert.Len(t, l.locks, 2)
	unlockA()
	unlockB()
	assert.Empty(t, l.locks)

	done := make(chan struct{})
	unlock := l.lock("a")
	go func() {
		defer close(done)
		l.lock("a")()
	}()
	select {
	case <-done:
		t.Fatal("second lock on the same game acquired while held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	<-done
	assert.Empty(t, l.locks)
}
