// Package dataset builds flat numeric datasets from directory trees of
// labeled images.
//
// The source tree is expected to have one immediate subdirectory per class
// label, with images of that class inside. Build walks the tree, decodes
// and resizes every readable image, and persists the flattened samples as
// capped partition files next to a labelmap.json describing the label ids.
package dataset

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"cvkit/imgio"
	"cvkit/internal/logger"
)

const component = "DatasetBuilder"

// Config drives a single Build run.
type Config struct {
	// Source is the root of the labeled image tree. It must exist.
	Source string
	// Dest receives labelmap.json and the partition files. It is created
	// if absent and must otherwise be empty.
	Dest string
	// Mode selects the channel interpretation of decoded images. It fixes
	// the per-sample channel count, so every row has the same width.
	Mode imgio.ReadMode
	// Width and Height are the target size every image is resized to.
	// Both default to 128.
	Width, Height int
	// PartitionCap is the maximum number of sample rows per partition
	// file. Defaults to 10000.
	PartitionCap int
	// Logger receives progress lines. Nil means silent.
	Logger logger.Logger
}

func (c Config) withDefaults() Config {
	if c.Width == 0 && c.Height == 0 {
		c.Width, c.Height = 128, 128
	}
	if c.PartitionCap == 0 {
		c.PartitionCap = 10000
	}
	if c.Logger == nil {
		c.Logger = logger.Silent()
	}
	return c
}

// Result summarizes a completed Build run.
type Result struct {
	// Labels maps each discovered label name to its dense integer id.
	Labels map[string]int
	// Samples is the number of rows written across all partitions.
	Samples int
	// Skipped is the number of files that failed to decode and were
	// left out.
	Skipped int
	// Partitions is the number of partition files written.
	Partitions int
}

// RowLength returns the width of every sample row produced by a run with
// this configuration: one label byte plus the flattened pixels.
func (c Config) RowLength() int {
	return 1 + c.Width*c.Height*c.Mode.Channels()
}

// Build runs the three pipeline stages: label discovery, sample extraction
// and partitioned persistence. Precondition violations abort with an error
// before anything besides the (empty) destination directory is created;
// per-file decode failures are skipped and counted, never fatal.
func Build(cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger

	if err := validate(cfg); err != nil {
		return nil, err
	}

	labels, labelMap, err := discoverLabels(cfg.Source)
	if err != nil {
		return nil, err
	}
	if len(labels) > 0 {
		if err := writeLabelMap(cfg.Dest, labelMap); err != nil {
			return nil, err
		}
		log.Info(component, "created labelmap", map[string]interface{}{
			"labels": len(labels),
		})
	}

	writer := newPartitionWriter(cfg.Dest, cfg.PartitionCap, log)
	result := &Result{Labels: labelMap}
	for _, label := range labels {
		dir := filepath.Join(cfg.Source, label)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to enumerate label directory %q", dir)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			row, err := extractSample(path, uint8(labelMap[label]), cfg)
			if err != nil {
				result.Skipped++
				log.Debug(component, "skipping file", map[string]interface{}{
					"file":   path,
					"reason": err.Error(),
				})
				continue
			}
			log.Info(component, "processing", map[string]interface{}{
				"file":  path,
				"label": label,
			})
			if err := writer.add(row); err != nil {
				return nil, err
			}
			result.Samples++
		}
	}
	if err := writer.finish(); err != nil {
		return nil, err
	}
	result.Partitions = writer.written

	log.Info(component, "build complete", map[string]interface{}{
		"samples":    result.Samples,
		"skipped":    result.Skipped,
		"partitions": result.Partitions,
	})
	return result, nil
}

func validate(cfg Config) error {
	info, err := os.Stat(cfg.Source)
	if err != nil || !info.IsDir() {
		return errors.Errorf("image source directory %q not found", cfg.Source)
	}

	if info, err := os.Stat(cfg.Dest); err == nil {
		if !info.IsDir() {
			return errors.Errorf("destination %q exists and is not a directory", cfg.Dest)
		}
		entries, err := os.ReadDir(cfg.Dest)
		if err != nil {
			return errors.Wrapf(err, "failed to inspect destination %q", cfg.Dest)
		}
		if len(entries) > 0 {
			return errors.Errorf("destination %q must be an empty directory", cfg.Dest)
		}
	} else if err := os.MkdirAll(cfg.Dest, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create destination %q", cfg.Dest)
	}

	if !cfg.Mode.Valid() {
		return errors.Errorf("invalid read mode %d", int(cfg.Mode))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.Errorf("target size must be a positive pair, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.PartitionCap <= 0 {
		return errors.Errorf("partition cap must be positive, got %d", cfg.PartitionCap)
	}
	return nil
}
