package cli

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/agentpipe/agentpipe/internal/errors"
)

// Discover locates the agent CLI binary.
//
// If command contains a path separator it is treated as an explicit
// path and checked directly. Otherwise the system PATH is searched
// first, then common installation directories.
func Discover(log *slog.Logger, command string) (string, error) {
	if filepath.Base(command) != command {
		log.Debug("Using explicit CLI path", "path", command)

		if _, err := os.Stat(command); err == nil {
			return command, nil
		}

		return "", &errors.SpawnError{SearchedPaths: []string{command}}
	}

	searched := make([]string, 0, 4)

	if path, err := exec.LookPath(command); err == nil {
		log.Debug("Found CLI in PATH", "path", path)

		return path, nil
	}

	searched = append(searched, "$PATH")

	commonDirs := []string{"/usr/local/bin", "/usr/bin"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		commonDirs = append(commonDirs, filepath.Join(homeDir, ".local/bin"))
	}

	for _, dir := range commonDirs {
		path := filepath.Join(dir, command)
		searched = append(searched, path)

		if _, err := os.Stat(path); err == nil {
			log.Debug("Found CLI at common path", "path", path)

			return path, nil
		}
	}

	log.Warn("Agent CLI not found", "command", command, "searched_paths", searched)

	return "", &errors.SpawnError{SearchedPaths: searched}
}
