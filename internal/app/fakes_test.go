package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"refbot/internal/domain"
	"refbot/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// fakeResolver returns a fixed outcome and records requests.
type fakeResolver struct {
	out  domain.Outcome
	err  error
	reqs []domain.PlayRequest
}

func (f *fakeResolver) Resolve(_ context.Context, req domain.PlayRequest) (domain.Outcome, error) {
	f.reqs = append(f.reqs, req)
	return f.out, f.err
}

// sentMessage is one message recorded by fakeTransport.
type sentMessage struct {
	Kind      string
	ID        string
	Target    string
	Recipient string
	Text      string
}

// fakeTransport records every send and hands out sequential ids.
type fakeTransport struct {
	mu        sync.Mutex
	seq       int
	sent      []sentMessage
	failReply bool
}

func (f *fakeTransport) next(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeTransport) CreateThread(_ context.Context, gameID, title, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := "thread-" + gameID
	f.sent = append(f.sent, sentMessage{Kind: "create", ID: id, Text: title + "\n" + body})
	return id, nil
}

func (f *fakeTransport) PostThread(_ context.Context, threadID, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next("post")
	f.sent = append(f.sent, sentMessage{Kind: "thread", ID: id, Target: threadID, Text: text})
	return id, nil
}

func (f *fakeTransport) Reply(_ context.Context, channel, messageID, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReply {
		return "", fmt.Errorf("reply unavailable")
	}
	id := f.next("reply")
	f.sent = append(f.sent, sentMessage{Kind: "reply", ID: id, Target: messageID, Text: text})
	return id, nil
}

func (f *fakeTransport) SendPrivate(_ context.Context, recipients []string, subject, text string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(recipients))
	for _, r := range recipients {
		id := f.next("dm")
		ids = append(ids, id)
		f.sent = append(f.sent, sentMessage{Kind: "private", ID: id, Recipient: r, Text: text})
	}
	return ids, nil
}

func (f *fakeTransport) byKind(kind string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// memStore is an in-memory MatchStore that round-trips games through Clone
// so tests observe only what was saved.
type memStore struct {
	mu      sync.Mutex
	games   map[string]domain.Game
	coaches map[string]string
	saves   int
}

func newMemStore() *memStore {
	return &memStore{games: make(map[string]domain.Game), coaches: make(map[string]string)}
}

func cloneGame(g *domain.Game) domain.Game {
	cp := *g
	cp.Status = g.Status.Clone()
	cp.History = g.History.Clone()
	return cp
}

func (m *memStore) LoadGame(_ context.Context, id string) (*domain.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	cp := cloneGame(&g)
	return &cp, nil
}

func (m *memStore) SaveGame(_ context.Context, game *domain.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[game.ID] = cloneGame(game)
	m.saves++
	return nil
}

func (m *memStore) GameIDForCoach(_ context.Context, coach string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.coaches[strings.ToLower(coach)]
	if !ok {
		return "", ports.ErrNotFound
	}
	return id, nil
}

func (m *memStore) IndexCoaches(_ context.Context, gameID string, coaches []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range coaches {
		m.coaches[strings.ToLower(c)] = gameID
	}
	return nil
}

func (m *memStore) UnindexCoaches(_ context.Context, coaches []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range coaches {
		delete(m.coaches, strings.ToLower(c))
	}
	return nil
}

var (
	_ ports.Transport    = (*fakeTransport)(nil)
	_ ports.MatchStore   = (*memStore)(nil)
	_ ports.PlayResolver = (*fakeResolver)(nil)
)
