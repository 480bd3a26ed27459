package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msto63/diktat/internal/session"
	"github.com/msto63/diktat/internal/stt"
	"github.com/spf13/cobra"
)

var (
	recordMode     string
	recordDuration time.Duration
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Nimmt vom Mikrofon auf und transkribiert",
	Long: `Startet eine Aufnahme vom konfigurierten Eingabegerät.

Die Aufnahme endet mit Enter, Ctrl+C oder nach --duration.
Danach wird transkribiert und das Ergebnis ausgegeben.

Beispiele:
  diktat record
  diktat record --mode fast
  diktat record --duration 30s`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().StringVarP(&recordMode, "mode", "m", "", "Modus: deep oder fast")
	recordCmd.Flags().DurationVarP(&recordDuration, "duration", "d", 0, "Maximale Aufnahmedauer (0 = bis Enter)")
}

func runRecord(cmd *cobra.Command, args []string) error {
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

	if err := a.boot(ctx, os.Stderr); err != nil {
		printError("Modelle nicht geladen", err)
		return err
	}
	if recordMode != "" {
		mode, err := stt.ParseMode(recordMode)
		if err != nil {
			return err
		}
		if err := a.session.SetMode(mode); err != nil {
			printError("Modus nicht verfügbar", err)
			return err
		}
	}

	if err := a.session.Start(ctx); err != nil {
		printError("Aufnahme nicht gestartet", err)
		return err
	}
	waitForStop(recordDuration)

	out, err := a.session.Stop(ctx)
	if err != nil && !errors.Is(err, session.ErrPersistence) {
		printError("Verarbeitung fehlgeschlagen", err)
		return err
	}

	if text := a.session.Output(); text != "" {
		fmt.Println()
		fmt.Println(text)
	}
	if out.Entry != nil {
		fmt.Fprintf(os.Stderr, "Gespeichert als Eintrag %d\n", out.Entry.ID)
	}
	return err
}

// waitForStop blocks until Enter, SIGINT/SIGTERM or the optional timeout
func waitForStop(limit time.Duration) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	enter := make(chan struct{})
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		close(enter)
	}()

	var timeout <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		timeout = timer.C
	}

	fmt.Fprintln(os.Stderr, "Drücke Enter zum Beenden der Aufnahme")
	select {
	case <-enter:
	case <-sigCh:
	case <-timeout:
	}
}
