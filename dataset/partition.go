package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"

	"cvkit/internal/logger"
	"cvkit/internal/npyz"
)

// PartitionName is the field name each partition archive stores its sample
// matrix under, and the stem of partition file names.
const PartitionName = "data"

// partitionWriter accumulates sample rows and flushes them as numbered
// partition files whenever the row cap is reached.
//
// Naming follows the cap: a flush forced by the cap is always indexed
// (data_0000.npz, data_0001.npz, ...), while the final flush of a partial
// remainder is indexed only if an indexed partition already exists.
// Whether an index is needed at all is therefore known at every flush
// point, and a run whose rows never reach the cap produces a single
// unindexed data.npz.
type partitionWriter struct {
	dest    string
	cap     int
	rows    [][]byte
	written int
	log     logger.Logger
}

func newPartitionWriter(dest string, cap int, log logger.Logger) *partitionWriter {
	return &partitionWriter{dest: dest, cap: cap, log: log}
}

func (w *partitionWriter) add(row []byte) error {
	w.rows = append(w.rows, row)
	if len(w.rows) >= w.cap {
		return w.flush(true)
	}
	return nil
}

// finish writes any buffered remainder as the last partition.
func (w *partitionWriter) finish() error {
	if len(w.rows) == 0 {
		return nil
	}
	return w.flush(w.written > 0)
}

func (w *partitionWriter) flush(indexed bool) error {
	matrix, err := npyz.NewMatrix(w.rows)
	if err != nil {
		return errors.WithMessage(err, "failed to assemble partition matrix")
	}

	name := PartitionName
	if indexed {
		name = fmt.Sprintf("%s_%04d", PartitionName, w.written)
	}
	path := filepath.Join(w.dest, name+".npz")
	if err := npyz.WriteArchive(path, PartitionName, matrix); err != nil {
		return err
	}

	w.log.Info(component, "partition written", map[string]interface{}{
		"file": path,
		"rows": matrix.Rows,
	})
	w.rows = w.rows[:0]
	w.written++
	return nil
}
