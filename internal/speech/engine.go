package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Engine synthesizes speech from text. A voice reference names a
// cloning sample in the voices directory; "default" selects the
// engine's built-in voice.
type Engine interface {
	// Synthesize renders text as WAV bytes.
	Synthesize(ctx context.Context, text, voiceRef, language string) ([]byte, error)
	// Close releases the engine's resources.
	Close() error
}

// CommandEngine shells out to a synthesis binary per request. The
// binary receives the text on stdin and writes WAV bytes to stdout;
// voice and language are passed as flags.
type CommandEngine struct {
	log       *slog.Logger
	command   string
	voicesDir string
}

// NewCommandEngine creates a CommandEngine.
func NewCommandEngine(log *slog.Logger, command, voicesDir string) *CommandEngine {
	return &CommandEngine{
		log:       log.With("component", "speech_engine"),
		command:   command,
		voicesDir: voicesDir,
	}
}

// Synthesize implements Engine.
func (e *CommandEngine) Synthesize(ctx context.Context, text, voiceRef, language string) ([]byte, error) {
	args := []string{"--language", language}

	if voiceRef != "" && voiceRef != DefaultVoice {
		refPath := filepath.Join(e.voicesDir, voiceRef+".wav")
		if _, err := os.Stat(refPath); err == nil {
			args = append(args, "--speaker-wav", refPath)

			e.log.Debug("Using voice reference", "path", refPath)
		}
	}

	cmd := exec.CommandContext(ctx, e.command, args...)
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("synthesis command failed: %w: %s", err, stderr.String())
	}

	return stdout.Bytes(), nil
}

// Close implements Engine. The command engine holds no persistent
// resources.
func (e *CommandEngine) Close() error {
	return nil
}

// DefaultVoice is the reference ID of the engine's built-in voice.
const DefaultVoice = "default"

// ListVoices scans the voices directory for .wav reference files and
// returns their stems, sorted. A missing or empty directory yields the
// default voice alone.
func ListVoices(voicesDir string) []string {
	entries, err := os.ReadDir(voicesDir)
	if err != nil {
		return []string{DefaultVoice}
	}

	var voices []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".wav") {
			continue
		}

		voices = append(voices, strings.TrimSuffix(name, ".wav"))
	}

	if len(voices) == 0 {
		return []string{DefaultVoice}
	}

	sort.Strings(voices)

	return voices
}
