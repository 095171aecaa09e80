package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/rtapi"
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

type storageKey struct {
	collection, key, userID string
}

// fakeNakama implements the parts of runtime.NakamaModule the adapters use.
// Calling anything else panics on the nil embedded interface.
type fakeNakama struct {
	runtime.NakamaModule

	mu       sync.Mutex
	storage  map[storageKey]*runtime.StorageWrite
	channels map[string][]*api.ChannelMessage
	users    map[string]string
	seq      int
}

func newFakeNakama(usernames ...string) *fakeNakama {
	f := &fakeNakama{
		storage:  make(map[storageKey]*runtime.StorageWrite),
		channels: make(map[string][]*api.ChannelMessage),
		users:    make(map[string]string),
	}
	for _, u := range usernames {
		f.users[u] = "uid-" + u
	}
	return f
}

func (f *fakeNakama) StorageRead(_ context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*api.StorageObject
	for _, r := range reads {
		w, ok := f.storage[storageKey{r.Collection, r.Key, r.UserID}]
		if !ok {
			continue
		}
		out = append(out, &api.StorageObject{
			Collection:      w.Collection,
			Key:             w.Key,
			UserId:          w.UserID,
			Value:           w.Value,
			PermissionRead:  int32(w.PermissionRead),
			PermissionWrite: int32(w.PermissionWrite),
		})
	}
	return out, nil
}

func (f *fakeNakama) StorageWrite(_ context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		cp := *w
		f.storage[storageKey{w.Collection, w.Key, w.UserID}] = &cp
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key, UserId: w.UserID})
	}
	return acks, nil
}

func (f *fakeNakama) StorageDelete(_ context.Context, deletes []*runtime.StorageDelete) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range deletes {
		delete(f.storage, storageKey{d.Collection, d.Key, d.UserID})
	}
	return nil
}

func (f *fakeNakama) ChannelIdBuild(_ context.Context, sender, target string, chanType runtime.ChannelType) (string, error) {
	switch chanType {
	case runtime.Room:
		return "2..." + target, nil
	case runtime.DirectMessage:
		return fmt.Sprintf("4.%s.%s.", sender, target), nil
	default:
		return "", fmt.Errorf("unsupported channel type %v", chanType)
	}
}

func (f *fakeNakama) ChannelMessageSend(_ context.Context, channelID string, content map[string]interface{}, senderID, senderUsername string, _ bool) (*rtapi.ChannelMessageAck, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := fmt.Sprintf("m-%d", f.seq)
	f.channels[channelID] = append(f.channels[channelID], &api.ChannelMessage{
		ChannelId: channelID,
		MessageId: id,
		SenderId:  senderID,
		Username:  senderUsername,
		Content:   string(raw),
	})
	return &rtapi.ChannelMessageAck{ChannelId: channelID, MessageId: id, Username: senderUsername}, nil
}

// ChannelMessagesList returns newest first, like a backwards listing.
func (f *fakeNakama) ChannelMessagesList(_ context.Context, channelID string, limit int, forward bool, _ string) ([]*api.ChannelMessage, string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.channels[channelID]
	out := make([]*api.ChannelMessage, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, msgs[i])
	}
	return out, "", "", nil
}

func (f *fakeNakama) UsersGetUsername(_ context.Context, usernames []string) ([]*api.User, error) {
	var out []*api.User
	for _, u := range usernames {
		if id, ok := f.users[strings.ToLower(u)]; ok {
			out = append(out, &api.User{Id: id, Username: u})
		}
	}
	return out, nil
}

// messages returns the decoded contents posted to channelID.
func (f *fakeNakama) messages(channelID string) []messageContent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []messageContent
	for _, m := range f.channels[channelID] {
		c, _ := parseContent(m.Content)
		out = append(out, c)
	}
	return out
}

func (f *fakeNakama) lastMessage(channelID string) *api.ChannelMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.channels[channelID]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}
