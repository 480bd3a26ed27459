package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/msto63/diktat/internal/session"
	"github.com/msto63/diktat/internal/stt"
	"github.com/spf13/cobra"
)

var (
	transcribeMode string
	transcribeJSON bool
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <datei>",
	Short: "Transkribiert eine Audiodatei",
	Long: `Transkribiert eine Audiodatei (WAV, MP3, FLAC).

Im Deep-Modus werden lange Texte zusammengefasst und gespeichert.

Beispiele:
  diktat transcribe meeting.wav
  diktat transcribe memo.mp3 --mode fast
  diktat transcribe interview.flac --json`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
	transcribeCmd.Flags().StringVarP(&transcribeMode, "mode", "m", "", "Modus: deep oder fast")
	transcribeCmd.Flags().BoolVar(&transcribeJSON, "json", false, "Ergebnis als JSON ausgeben")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		printError("Datei nicht lesbar", err)
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		printError("Config nicht geladen", err)
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, appOptions{})
	if err != nil {
		printError("Initialisierung fehlgeschlagen", err)
		return err
	}
	defer a.Close()

	statusOut := os.Stderr
	if err := a.boot(ctx, statusOut); err != nil {
		printError("Modelle nicht geladen", err)
		return err
	}
	if transcribeMode != "" {
		mode, err := stt.ParseMode(transcribeMode)
		if err != nil {
			return err
		}
		if err := a.session.SetMode(mode); err != nil {
			printError("Modus nicht verfügbar", err)
			return err
		}
	}

	out, err := a.session.Upload(ctx, filepath.Base(path), data)
	if err != nil && !errors.Is(err, session.ErrPersistence) {
		printError("Transkription fehlgeschlagen", err)
		return err
	}

	if transcribeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(out); encErr != nil {
			return encErr
		}
		return err
	}

	fmt.Println(a.session.Output())
	return err
}
