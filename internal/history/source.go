package history

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	env11 "github.com/caarlos0/env/v11"
)

// Source fetches chat records in bulk. Implementations wrap whatever
// backend the records live in; the exporter only needs ordered records
// with sender and reply metadata.
type Source interface {
	Fetch(ctx context.Context) ([]Record, error)
}

// Config is the exporter's environment configuration.
type Config struct {
	// ArchivePath is where the merged JSON document lives.
	ArchivePath string `env:"AGENTPIPE_HISTORY_PATH" envDefault:"history.json"`
	// SourcePath points at an NDJSON record dump to import.
	SourcePath string `env:"AGENTPIPE_HISTORY_SOURCE"`
}

// LoadConfig reads exporter configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := new(Config)
	if err := env11.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse history env: %w", err)
	}

	return cfg, nil
}

// FileSource reads records from a newline-delimited JSON file, one
// record per line. Blank lines are skipped; malformed lines are
// logged and skipped rather than aborting the import.
type FileSource struct {
	log  *slog.Logger
	path string
}

// NewFileSource creates a FileSource for the given path.
func NewFileSource(log *slog.Logger, path string) *FileSource {
	return &FileSource{
		log:  log.With("component", "history_source"),
		path: path,
	}
}

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context) ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	var records []Record

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			s.log.Warn("Skipping malformed record line", "error", err)

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan source: %w", err)
	}

	s.log.Debug("Fetched records", "path", s.path, "count", len(records))

	return records, nil
}

// Export runs one import cycle: load the archive, fetch from the
// source, merge without overwriting, resolve replies, and save.
// Returns the number of records added.
func Export(ctx context.Context, log *slog.Logger, source Source, archivePath string) (int, error) {
	archive, err := Load(log, archivePath)
	if err != nil {
		return 0, err
	}

	records, err := source.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch records: %w", err)
	}

	added := archive.Merge(records)
	archive.ResolveReplies()

	if err := archive.Save(); err != nil {
		return added, err
	}

	return added, nil
}
