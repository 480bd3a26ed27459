package cmd

import (
	"context"

	"github.com/msto63/diktat/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Startet die Terminal-Oberfläche",
	Long: `Startet die interaktive Terminal-Oberfläche.

Tasten:
  r / Leertaste  Aufnahme starten/stoppen
  u              Audiodatei transkribieren
  m              Modus wechseln (deep/fast)
  h              Verlauf
  c              Ausgabe kopieren
  x              Ausgabe leeren
  q              Beenden

Mit --hotkey startet und stoppt Ctrl+Shift+M die Aufnahme systemweit.

Logs werden nach <data_dir>/diktat.log geschrieben.`,
	RunE: runTUI,
}

var tuiHotkey bool

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().BoolVar(&tuiHotkey, "hotkey", false, "Globale Tastenkombination "+tui.HotkeyDescription+" zum Aufnehmen (Linux/Windows)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("Config nicht geladen", err)
		return err
	}

	a, err := newApp(context.Background(), cfg, appOptions{LogToFile: true})
	if err != nil {
		printError("Initialisierung fehlgeschlagen", err)
		return err
	}
	defer a.Close()

	return tui.Run(a.session, tui.Options{
		GlobalHotkey: tuiHotkey,
		Logger:       a.logger.Named("tui"),
	})
}
