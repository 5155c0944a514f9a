package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LabelMapFile is the name of the label-map artifact written to the
// destination directory.
const LabelMapFile = "labelmap.json"

// maxLabels bounds the label space: ids share the uint8 row schema with
// pixel data.
const maxLabels = 256

// discoverLabels lists the immediate subdirectories of root in lexical
// order and assigns them dense integer ids in that order.
func discoverLabels(root string) ([]string, map[string]int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to enumerate source directory %q", root)
	}

	var labels []string
	for _, entry := range entries {
		if entry.IsDir() {
			labels = append(labels, entry.Name())
		}
	}
	if len(labels) > maxLabels {
		return nil, nil, errors.Errorf("found %d labels, at most %d fit the uint8 row schema", len(labels), maxLabels)
	}

	labelMap := make(map[string]int, len(labels))
	for id, label := range labels {
		labelMap[label] = id
	}
	return labels, labelMap, nil
}

func writeLabelMap(dest string, labelMap map[string]int) error {
	data, err := json.Marshal(labelMap)
	if err != nil {
		return errors.Wrap(err, "failed to encode label map")
	}
	path := filepath.Join(dest, LabelMapFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write label map to %q", path)
	}
	return nil
}

// ReadLabelMap loads a label map written by Build.
func ReadLabelMap(dest string) (map[string]int, error) {
	path := filepath.Join(dest, LabelMapFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read label map from %q", path)
	}
	labelMap := make(map[string]int)
	if err := json.Unmarshal(data, &labelMap); err != nil {
		return nil, errors.Wrapf(err, "failed to decode label map %q", path)
	}
	return labelMap, nil
}
