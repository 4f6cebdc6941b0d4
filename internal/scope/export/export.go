// Package export writes queue snapshots to dated JSON files.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dsjohal14/taskpop/internal/scope/tasks"
	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// Exporter writes snapshot files into a directory
type Exporter struct {
	dir    string
	now    func() time.Time
	logger zerolog.Logger
}

// NewExporter creates an exporter writing into dir
func NewExporter(dir string, logger zerolog.Logger) *Exporter {
	return &Exporter{
		dir:    dir,
		now:    time.Now,
		logger: logger,
	}
}

// Dir returns the export directory
func (e *Exporter) Dir() string {
	return e.dir
}

// FileName returns the manual export file name for the given time
func FileName(t time.Time) string {
	return fmt.Sprintf("tasks-%s.json", t.Format(dateLayout))
}

// AutoFileName returns the auto-export file name for the given time
func AutoFileName(t time.Time) string {
	return fmt.Sprintf("tasks-auto-%s.json", t.Format(dateLayout))
}

// Encode renders a snapshot as pretty-printed JSON
func Encode(snap tasks.Snapshot) ([]byte, error) {
	if snap.Tasks == nil {
		snap.Tasks = []tasks.SnapshotTask{}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Export writes a manual export and returns its path
func (e *Exporter) Export(snap tasks.Snapshot) (string, error) {
	return e.write(FileName(e.now()), snap)
}

// AutoExport writes an auto-export and returns its path
func (e *Exporter) AutoExport(snap tasks.Snapshot) (string, error) {
	return e.write(AutoFileName(e.now()), snap)
}

// Listener returns a store listener that auto-exports on EventAutoExport.
// Failures are logged and never reach the store.
func (e *Exporter) Listener() tasks.Listener {
	return func(ev tasks.Event) {
		if ev.Kind != tasks.EventAutoExport {
			return
		}
		path, err := e.AutoExport(ev.Snapshot)
		if err != nil {
			e.logger.Warn().Err(err).Int("pop_count", ev.PopCount).Msg("auto-export failed")
			return
		}
		e.logger.Info().Str("path", path).Int("pop_count", ev.PopCount).Msg("auto-export written")
	}
}

func (e *Exporter) write(name string, snap tasks.Snapshot) (string, error) {
	data, err := Encode(snap)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
