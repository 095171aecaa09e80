package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"refbot/internal/domain"
	"refbot/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// StorageStore implements ports.MatchStore on Nakama's storage engine. Games and
// the coach index are system-owned objects that clients can neither read nor write.
type StorageStore struct {
	nk runtime.NakamaModule
}

// NewStorageStore creates a new storage-backed match store.
func NewStorageStore(nk runtime.NakamaModule) *StorageStore {
	return &StorageStore{nk: nk}
}

type coachIndexValue struct {
	GameID string `json:"game_id"`
}

func (s *StorageStore) LoadGame(ctx context.Context, id string) (*domain.Game, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: gamesCollection,
		Key:        id,
		UserID:     systemUserID,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to read game %s: %w", id, err)
	}
	if len(objects) == 0 {
		return nil, ports.ErrNotFound
	}
	var game domain.Game
	if err := json.Unmarshal([]byte(objects[0].Value), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game %s: %w", id, err)
	}
	return &game, nil
}

func (s *StorageStore) SaveGame(ctx context.Context, game *domain.Game) error {
	value, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to marshal game %s: %w", game.ID, err)
	}
	_, err = s.nk.StorageWrite(ctx, []*runtime.StorageWrite{systemWrite(gamesCollection, game.ID, string(value))})
	if err != nil {
		return fmt.Errorf("failed to write game %s: %w", game.ID, err)
	}
	return nil
}

func (s *StorageStore) GameIDForCoach(ctx context.Context, coach string) (string, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: coachesCollection,
		Key:        coachKey(coach),
		UserID:     systemUserID,
	}})
	if err != nil {
		return "", fmt.Errorf("failed to read coach index for %s: %w", coach, err)
	}
	if len(objects) == 0 {
		return "", ports.ErrNotFound
	}
	var v coachIndexValue
	if err := json.Unmarshal([]byte(objects[0].Value), &v); err != nil {
		return "", fmt.Errorf("failed to unmarshal coach index for %s: %w", coach, err)
	}
	if v.GameID == "" {
		return "", ports.ErrNotFound
	}
	return v.GameID, nil
}

func (s *StorageStore) IndexCoaches(ctx context.Context, gameID string, coaches []string) error {
	value, err := json.Marshal(coachIndexValue{GameID: gameID})
	if err != nil {
		return fmt.Errorf("failed to marshal coach index: %w", err)
	}
	writes := make([]*runtime.StorageWrite, 0, len(coaches))
	for _, coach := range coaches {
		writes = append(writes, systemWrite(coachesCollection, coachKey(coach), string(value)))
	}
	if len(writes) == 0 {
		return nil
	}
	if _, err := s.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to index coaches for game %s: %w", gameID, err)
	}
	return nil
}

func (s *StorageStore) UnindexCoaches(ctx context.Context, coaches []string) error {
	deletes := make([]*runtime.StorageDelete, 0, len(coaches))
	for _, coach := range coaches {
		deletes = append(deletes, &runtime.StorageDelete{
			Collection: coachesCollection,
			Key:        coachKey(coach),
			UserID:     systemUserID,
		})
	}
	if len(deletes) == 0 {
		return nil
	}
	if err := s.nk.StorageDelete(ctx, deletes); err != nil {
		return fmt.Errorf("failed to unindex coaches: %w", err)
	}
	return nil
}

func systemWrite(collection, key, value string) *runtime.StorageWrite {
	return &runtime.StorageWrite{
		Collection:      collection,
		Key:             key,
		UserID:          systemUserID,
		Value:           value,
		PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}
}

func coachKey(coach string) string {
	return strings.ToLower(coach)
}

var _ ports.MatchStore = (*StorageStore)(nil)
