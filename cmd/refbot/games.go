package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"refbot/internal/domain"
	"refbot/internal/storage/sqlite"

	"github.com/spf13/cobra"
)

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [game]",
		Short: "List active games, or show one game with its history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				game, err := store.LoadGame(ctx, args[0])
				if err != nil {
					return fmt.Errorf("load game %s: %w", args[0], err)
				}
				printGame(out, game)
				return nil
			}
			ids, err := store.ActiveGameIDs(ctx)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(out, "No active games.")
				return nil
			}
			for _, id := range ids {
				game, err := store.LoadGame(ctx, id)
				if err != nil {
					return fmt.Errorf("load game %s: %w", id, err)
				}
				fmt.Fprintln(out, summary(game))
			}
			return nil
		},
	}
}

func (c *cli) rollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <game> <index>",
		Short: "Restore a game to the state before history entry <index> (0 is newest)",
		Long:  "Restore a game to the state before history entry <index> (0 is newest).\n\n" + offlineNote,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[1])
			}
			var resumed bool
			return c.updateGame(cmd.Context(), args[0], cmd.OutOrStdout(), func(game *domain.Game) (string, error) {
				wasEnded := game.Status.IsEnded() && !game.Abandoned
				applied, err := game.History.Rollback(&game.Status, index)
				if err != nil {
					return "", err
				}
				if !applied {
					return fmt.Sprintf("Game %s was already rolled back to entry %d.", game.ID, index), nil
				}
				resumed = wasEnded && !game.Status.IsEnded()
				return fmt.Sprintf("Rolled back: %s", summary(game)), nil
			}, func(ctx context.Context, store *sqlite.Store, game *domain.Game) error {
				if !resumed {
					return nil
				}
				return store.IndexCoaches(ctx, game.ID, game.Coaches())
			})
		},
	}
}

func (c *cli) kickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kick <game>",
		Short: "Clear a game's error state",
		Long:  "Clear a game's error state.\n\n" + offlineNote,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.updateGame(cmd.Context(), args[0], cmd.OutOrStdout(), func(game *domain.Game) (string, error) {
				if !game.Errored {
					return fmt.Sprintf("Game %s is not in an error state.", game.ID), nil
				}
				game.Errored = false
				return fmt.Sprintf("Game %s kicked.", game.ID), nil
			})
		},
	}
}

// offlineNote is appended to the help of commands that write games directly.
const offlineNote = "Stop any bot serving the same database first. The bot keeps no lock in the " +
	"database, so a turn it saves afterwards would overwrite this change. The write itself is " +
	"refused if the game changed since it was read."

// afterUpdate runs once the updated game has been written.
type afterUpdate func(ctx context.Context, store *sqlite.Store, game *domain.Game) error

// updateGame applies fn to a game and writes it back only if nothing else wrote
// the game in between.
func (c *cli) updateGame(ctx context.Context, id string, out io.Writer, fn func(*domain.Game) (string, error), after ...afterUpdate) error {
	store, _, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var msg string
	game, err := store.UpdateGame(ctx, id, func(game *domain.Game) error {
		var err error
		msg, err = fn(game)
		return err
	})
	if errors.Is(err, sqlite.ErrConflict) {
		return fmt.Errorf("game %s changed while updating, run the command again: %w", id, err)
	}
	if err != nil {
		return fmt.Errorf("update game %s: %w", id, err)
	}
	for _, fn := range after {
		if err := fn(ctx, store, game); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, msg)
	return nil
}

func summary(game *domain.Game) string {
	st := &game.Status
	line := fmt.Sprintf("%s: %s %d @ %s %d, %s %s, %s waiting on %s",
		game.ID, game.Away.Name, st.Away.Points, game.Home.Name, st.Home.Points,
		domain.RenderQuarter(st.Quarter), domain.RenderClock(st.Clock), st.Action, st.WaitingOn)
	if game.Errored {
		line += " [errored]"
	}
	if game.Abandoned {
		line += " [abandoned]"
	}
	return line
}

func printGame(out io.Writer, game *domain.Game) {
	fmt.Fprintln(out, summary(game))
	st := &game.Status
	if domain.IsPlayAction(st.Action) {
		fmt.Fprintf(out, "%s & %d on the %s, %s ball\n",
			domain.RenderDown(st.Down), st.Distance, domain.RenderLocation(st.Location), st.Possession)
	}
	fmt.Fprintf(out, "Waiting on messages: %v\n", st.Ledger.IDs)
	for i, e := range game.History.Entries {
		s := e.State
		fmt.Fprintf(out, "  %d. before %s: %s %s, %s %s\n", i, e.Tag,
			domain.RenderQuarter(s.Quarter), domain.RenderClock(s.Clock), s.Action, s.WaitingOn)
	}
}
