package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentpipe/agentpipe/internal/history"
)

var (
	exportSourcePath  string
	exportArchivePath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Merge chat records into the history archive",
	Long: `Read chat records from a newline-delimited JSON dump and merge them
into the history archive. Records already present are never
overwritten, so re-running an export is safe. Reply references are
resolved against the merged set and the archive is sorted by message
ID before saving.

Paths default to AGENTPIPE_HISTORY_SOURCE and AGENTPIPE_HISTORY_PATH.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportSourcePath, "source", "",
		"NDJSON record dump to import")
	exportCmd.Flags().StringVar(&exportArchivePath, "output", "",
		"archive document path")
}

func runExport(cmd *cobra.Command, _ []string) error {
	log := newLogger()

	cfg, err := history.LoadConfig()
	if err != nil {
		return err
	}

	if exportSourcePath != "" {
		cfg.SourcePath = exportSourcePath
	}

	if exportArchivePath != "" {
		cfg.ArchivePath = exportArchivePath
	}

	if cfg.SourcePath == "" {
		return fmt.Errorf("no source: set --source or AGENTPIPE_HISTORY_SOURCE")
	}

	source := history.NewFileSource(log, cfg.SourcePath)

	added, err := history.Export(cmd.Context(), log, source, cfg.ArchivePath)
	if err != nil {
		return err
	}

	fmt.Printf("Added %d records to %s\n", added, cfg.ArchivePath)

	return nil
}
