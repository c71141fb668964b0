package store

import (
	"fmt"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the stores to merge from.
	SourcePaths []string
	// DestPath is the destination store.
	DestPath string
}

// MergeStats tracks merge operation statistics.
type MergeStats struct {
	SourcesMerged   int
	SourcesSkipped  int
	LinesMerged     int
	StoresProcessed int
}

// Merge combines several stores into one. A source path already present in
// the destination is skipped, so merging the same store twice is harmless.
// Shape counts are rebuilt from the copied lines.
func Merge(cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, fmt.Errorf("no source stores specified")
	}
	if cfg.DestPath == "" {
		return nil, fmt.Errorf("destination path is required")
	}

	dest, err := New(Config{Path: cfg.DestPath})
	if err != nil {
		return nil, fmt.Errorf("opening destination store: %w", err)
	}
	defer dest.Close()

	stats := &MergeStats{}
	for _, sourcePath := range cfg.SourcePaths {
		src, err := New(Config{Path: sourcePath})
		if err != nil {
			return stats, fmt.Errorf("opening %s: %w", sourcePath, err)
		}
		err = Copy(dest, src, stats)
		src.Close()
		if err != nil {
			return stats, fmt.Errorf("merging from %s: %w", sourcePath, err)
		}
		stats.StoresProcessed++
	}

	return stats, nil
}

// Copy adds every source of src that dest does not hold yet, with its lines.
// stats may be nil.
func Copy(dest, src Store, stats *MergeStats) error {
	if stats == nil {
		stats = &MergeStats{}
	}

	sources, err := src.GetSources()
	if err != nil {
		return err
	}

	for _, source := range sources {
		exists, err := dest.SourceExists(source.Path)
		if err != nil {
			return err
		}
		if exists {
			stats.SourcesSkipped++
			continue
		}

		lines, err := src.GetLines(source.Path)
		if err != nil {
			return err
		}
		if err := dest.AddLines(source.Path, lines); err != nil {
			return err
		}
		if err := dest.AddSource(source); err != nil {
			return err
		}
		stats.SourcesMerged++
		stats.LinesMerged += len(lines)
	}
	return nil
}
