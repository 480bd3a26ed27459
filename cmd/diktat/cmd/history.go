package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/msto63/diktat/internal/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Verwaltet gespeicherte Transkriptionen",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Listet den Verlauf (neueste zuerst)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(ctx context.Context, store *history.Store) error {
			entries, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("Keine Einträge")
				return nil
			}
			for _, e := range entries {
				tag := "   "
				if e.HasSummary() {
					tag = "[Z]"
				}
				fmt.Printf("%d  %s  %s %s\n", e.ID, e.Date, tag, e.Preview(60))
			}
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Zeigt einen Eintrag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("ungültige ID: %s", args[0])
		}
		return withHistory(func(ctx context.Context, store *history.Store) error {
			e, err := store.Get(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("# %s\n\n%s\n", e.Date, e.Display())
			return nil
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Löscht einen Eintrag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("ungültige ID: %s", args[0])
		}
		return withHistory(func(ctx context.Context, store *history.Store) error {
			if err := store.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Eintrag %d gelöscht\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)
}

// withHistory opens the configured store without loading any engine
func withHistory(fn func(ctx context.Context, store *history.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("Config nicht geladen", err)
		return err
	}
	ctx := context.Background()
	store, err := history.Open(ctx, cfg.History)
	if err != nil {
		printError("Verlauf nicht geöffnet", err)
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}
