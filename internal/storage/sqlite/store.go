// Package sqlite provides a SQLite-backed match store for the standalone bot.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"refbot/internal/domain"
	"refbot/internal/ports"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS coach_index (
	coach   TEXT PRIMARY KEY,
	game_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS coach_index_game ON coach_index (game_id);
`

// ErrConflict is returned by UpdateGame when the game changed while it was
// being updated.
var ErrConflict = errors.New("game changed concurrently")

// Store persists games as JSON documents plus a coach-to-game index.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a SQLite store at path and creates the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) LoadGame(ctx context.Context, id string) (*domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM games WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	var game domain.Game
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &game, nil
}

func (s *Store) SaveGame(ctx context.Context, game *domain.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(game.ID) == "" {
		return fmt.Errorf("game id is required")
	}
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", game.ID, err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO games (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		game.ID, string(data), s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save game %s: %w", game.ID, err)
	}
	return nil
}

// UpdateGame loads a game, applies fn and writes the result only if the stored
// record is still the one that was loaded. It returns ErrConflict otherwise.
func (s *Store) UpdateGame(ctx context.Context, id string, fn func(*domain.Game) error) (*domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var before string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM games WHERE id = ?`, id).Scan(&before)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	var game domain.Game
	if err := json.Unmarshal([]byte(before), &game); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	if err := fn(&game); err != nil {
		return nil, err
	}
	after, err := json.Marshal(&game)
	if err != nil {
		return nil, fmt.Errorf("encode game %s: %w", id, err)
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE games SET data = ?, updated_at = ? WHERE id = ? AND data = ?`,
		string(after), s.now().UTC().UnixMilli(), id, before)
	if err != nil {
		return nil, fmt.Errorf("update game %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update game %s: %w", id, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("update game %s: %w", id, ErrConflict)
	}
	return &game, nil
}

func (s *Store) GameIDForCoach(ctx context.Context, coach string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var id string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT game_id FROM coach_index WHERE coach = ?`, coachKey(coach)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ports.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup coach %s: %w", coach, err)
	}
	return id, nil
}

func (s *Store) IndexCoaches(ctx context.Context, gameID string, coaches []string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, coach := range coaches {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO coach_index (coach, game_id) VALUES (?, ?)
				 ON CONFLICT(coach) DO UPDATE SET game_id = excluded.game_id`,
				coachKey(coach), gameID)
			if err != nil {
				return fmt.Errorf("index coach %s: %w", coach, err)
			}
		}
		return nil
	})
}

func (s *Store) UnindexCoaches(ctx context.Context, coaches []string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, coach := range coaches {
			if _, err := tx.ExecContext(ctx, `DELETE FROM coach_index WHERE coach = ?`, coachKey(coach)); err != nil {
				return fmt.Errorf("unindex coach %s: %w", coach, err)
			}
		}
		return nil
	})
}

// ActiveGameIDs lists the games that still have coaches indexed, oldest update first.
func (s *Store) ActiveGameIDs(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT DISTINCT g.id FROM games g JOIN coach_index c ON c.game_id = g.id ORDER BY g.updated_at, g.id`)
	if err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func coachKey(coach string) string {
	return strings.ToLower(strings.TrimSpace(coach))
}

var _ ports.MatchStore = (*Store)(nil)
