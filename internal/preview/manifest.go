package preview

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"hand-sword-fx/internal/gesture"
)

// Entry is one written frame.
type Entry struct {
	Seq   uint64       `json:"seq"`
	Time  float64      `json:"t"`
	Mode  gesture.Mode `json:"mode"`
	Held  bool         `json:"held,omitempty"`
	Image string       `json:"image"`
}

// Manifest describes a preview run.
type Manifest struct {
	RunID   string    `json:"run_id"`
	Created time.Time `json:"created"`
	Format  string    `json:"format"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Frames  []Entry   `json:"frames"`
	Dropped uint64    `json:"dropped"`
	Failed  uint64    `json:"failed"`
}

// WriteManifest writes manifest.json with frames ordered by sequence.
func WriteManifest(path string, m *Manifest) error {
	sort.Slice(m.Frames, func(i, j int) bool { return m.Frames[i].Seq < m.Frames[j].Seq })
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("preview: manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preview: read %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("preview: parse %s: %w", path, err)
	}
	return &m, nil
}
