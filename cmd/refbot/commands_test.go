package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"refbot/internal/domain"
	"refbot/internal/storage/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "refbot.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()

	game := &domain.Game{
		ID:     "g1",
		Home:   domain.Team{Tag: "home", Name: "Home U", Coaches: []string{"hc"}},
		Away:   domain.Team{Tag: "away", Name: "Away St", Coaches: []string{"ac"}},
		Status: domain.NewMatchState(domain.Rules{}),
	}
	game.History.Snapshot(game.Status, "msg-1")
	game.Status.Action = domain.ActionDefer
	game.Status.WaitingOn = domain.Home
	game.Errored = true
	ctx := context.Background()
	require.NoError(t, store.SaveGame(ctx, game))
	require.NoError(t, store.IndexCoaches(ctx, "g1", []string{"hc", "ac"}))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func loadGame(t *testing.T, path string) *domain.Game {
	t.Helper()
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()
	game, err := store.LoadGame(context.Background(), "g1")
	require.NoError(t, err)
	return game
}

func TestStatusCommand(t *testing.T) {
	db := seedDB(t)

	out, err := run(t, "--db", db, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "g1: Away St 0 @ Home U 0")
	assert.Contains(t, out, "[errored]")

	out, err = run(t, "--db", db, "status", "g1")
	require.NoError(t, err)
	assert.Contains(t, out, "0. before msg-1")

	_, err = run(t, "--db", db, "status", "nope")
	assert.Error(t, err)
}

func TestKickCommand(t *testing.T) {
	db := seedDB(t)

	out, err := run(t, "--db", db, "kick", "g1")
	require.NoError(t, err)
	assert.Contains(t, out, "Game g1 kicked.")
	assert.False(t, loadGame(t, db).Errored)

	out, err = run(t, "--db", db, "kick", "g1")
	require.NoError(t, err)
	assert.Contains(t, out, "not in an error state")
}

func TestRollbackCommand(t *testing.T) {
	db := seedDB(t)

	_, err := run(t, "--db", db, "rollback", "g1", "3")
	assert.ErrorIs(t, err, domain.ErrHistoryIndex)

	out, err := run(t, "--db", db, "rollback", "g1", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Rolled back")
	game := loadGame(t, db)
	assert.Equal(t, domain.ActionCoin, game.Status.Action)
	assert.Zero(t, game.History.Len())
}

func TestConfigFileMustExistWhenNamed(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "status")
	assert.Error(t, err)
}

func TestConfigFileOverrides(t *testing.T) {
	dir := t.TempDir()
	db := seedDB(t)
	cfgPath := filepath.Join(dir, "refbot.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database_path: "+db+"\nlog_level: debug\n"), 0o600))

	out, err := run(t, "--config", cfgPath, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "g1:")
}

func TestRollbackOfEndedGameReindexesCoaches(t *testing.T) {
	db := seedDB(t)
	store, err := sqlite.Open(db)
	require.NoError(t, err)
	ctx := context.Background()
	game, err := store.LoadGame(ctx, "g1")
	require.NoError(t, err)
	game.Status.End(domain.Away)
	require.NoError(t, store.SaveGame(ctx, game))
	require.NoError(t, store.UnindexCoaches(ctx, game.Coaches()))
	require.NoError(t, store.Close())

	out, err := run(t, "--db", db, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No active games.")

	_, err = run(t, "--db", db, "rollback", "g1", "0")
	require.NoError(t, err)

	out, err = run(t, "--db", db, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "g1:")
}

func TestWritingCommandsWarnAboutRunningBot(t *testing.T) {
	for _, name := range []string{"rollback", "kick"} {
		out, err := run(t, name, "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "Stop any bot serving the same database first.")
	}
}
