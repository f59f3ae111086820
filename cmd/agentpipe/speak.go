package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentpipe/agentpipe/internal/speech"
)

var (
	speakAddr      string
	speakVoicesDir string
	speakEngine    string
)

var speakServerCmd = &cobra.Command{
	Use:   "speak-server",
	Short: "Serve text-to-speech over HTTP",
	Long: `Start the speech-synthesis HTTP server. The engine is loaded before
the listener opens; requests hit POST /v1/tts with {text,
reference_id, language} and receive WAV bytes. Voice references are
.wav files in the voices directory, listed at GET /v1/references/list.

Defaults come from AGENTPIPE_SPEECH_ADDR, AGENTPIPE_SPEECH_VOICES_DIR,
and AGENTPIPE_SPEECH_ENGINE.`,
	RunE: runSpeakServer,
}

func init() {
	rootCmd.AddCommand(speakServerCmd)

	speakServerCmd.Flags().StringVar(&speakAddr, "addr", "",
		"listen address")
	speakServerCmd.Flags().StringVar(&speakVoicesDir, "voices-dir", "",
		"directory with voice reference WAV files")
	speakServerCmd.Flags().StringVar(&speakEngine, "engine", "",
		"synthesis binary to invoke")
}

func runSpeakServer(_ *cobra.Command, _ []string) error {
	log := newLogger()

	cfg, err := speech.LoadConfig()
	if err != nil {
		return err
	}

	if speakAddr != "" {
		cfg.Addr = speakAddr
	}

	if speakVoicesDir != "" {
		cfg.VoicesDir = speakVoicesDir
	}

	if speakEngine != "" {
		cfg.EngineCommand = speakEngine
	}

	if err := os.MkdirAll(cfg.VoicesDir, 0o755); err != nil {
		return fmt.Errorf("create voices directory: %w", err)
	}

	engine := speech.NewCommandEngine(log, cfg.EngineCommand, cfg.VoicesDir)
	server := speech.NewServer(log, cfg, engine)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	fmt.Printf("Speech server listening on %s\n", cfg.Addr)

	select {
	case sig := <-sigCh:
		fmt.Printf("\nReceived %s, shutting down...\n", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
