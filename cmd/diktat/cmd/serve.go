package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msto63/diktat/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Startet die HTTP-Schnittstelle",
	Long: `Startet die HTTP- und WebSocket-Schnittstelle der Sitzung.

Mit audio.source = "websocket" liefert ein Client die Audiodaten über
/api/v1/capture/ws, sonst nimmt der Server vom lokalen Mikrofon auf.

Endpunkte:
  GET  /health               Status der Komponenten
  GET  /metrics              Prometheus-Metriken
  POST /api/v1/record/start  Aufnahme starten
  POST /api/v1/record/stop   Aufnahme beenden und transkribieren
  POST /api/v1/upload        Audiodatei transkribieren`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("Config nicht geladen", err)
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		capture *server.WSSource
		opts    appOptions
	)
	if cfg.Audio.Source == "websocket" {
		capture = server.NewWSSource(newLogger(cfg, os.Stderr).Named("capture"))
		opts.Source = capture
	}

	a, err := newApp(ctx, cfg, opts)
	if err != nil {
		printError("Initialisierung fehlgeschlagen", err)
		return err
	}
	defer a.Close()

	srv := server.New(server.Options{
		Session: a.session,
		Capture: capture,
		Health:  a.health,
		Metrics: a.metrics,
		Auth:    server.NewAuthenticator(cfg.Server.JWTSecret),
		Config:  cfg.Server,
		Logger:  a.logger.Named("http"),
	})

	// Engines load in the background; /health reports degraded until then
	go func() {
		if err := a.session.Boot(ctx); err != nil {
			a.logger.Error("Boot failed", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Println("Diktat")
	fmt.Println("======")
	fmt.Printf("HTTP:   http://%s\n", cfg.ServerAddress())
	fmt.Printf("Health: http://%s/health\n", cfg.ServerAddress())
	if cfg.Audio.Source == "websocket" {
		fmt.Printf("Audio:  ws://%s/api/v1/capture/ws\n", cfg.ServerAddress())
	} else {
		fmt.Println("Audio:  lokales Mikrofon")
	}
	fmt.Println("Drücke Ctrl+C zum Beenden")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		fmt.Println("\nStoppe Server...")
	case err := <-errCh:
		if err != nil {
			printError("Server-Fehler", err)
			return err
		}
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("Graceful shutdown failed", "error", err)
	}
	return nil
}
