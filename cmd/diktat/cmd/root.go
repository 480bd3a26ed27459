package cmd

import (
	"fmt"
	"os"

	"github.com/msto63/diktat/pkg/core/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "diktat",
	Short: "Diktat - Sprachtranskription mit Verlauf",
	Long: `Diktat nimmt Sprache auf, transkribiert sie lokal oder über einen
konfigurierten Dienst, fasst lange Texte zusammen und speichert das
Ergebnis im Verlauf.

Modi:
  deep  - genaue Transkription, Zusammenfassung und Verlauf
  fast  - schnelle Transkription, nur Anzeige`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: ./configs/diktat.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Output")
}

// loadConfig reads --config or the default locations
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.General.LogLevel = "debug"
	}
	return cfg, nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Fehler: %s: %v\n", msg, err)
}
