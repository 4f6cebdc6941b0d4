package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion is the only snapshot version the store accepts.
const SchemaVersion = 1

// ErrUnsupportedSnapshot is returned when a snapshot carries an unknown version.
var ErrUnsupportedSnapshot = errors.New("unsupported snapshot version")

// Snapshot is the versioned export/import representation of the queue.
// Priorities are not part of it; they are recomputed on import.
type Snapshot struct {
	Version int            `json:"version"`
	Tasks   []SnapshotTask `json:"tasks"`
}

// SnapshotTask is one task inside a Snapshot.
type SnapshotTask struct {
	ID          string `json:"id"`
	Description string `json:"desc"`
}

// State is the blob written to the persistence channel.
type State struct {
	Queue    []Task `json:"queue"`
	PopCount int    `json:"popCount"`
}

// rawSnapshot keeps tasks undecoded so a missing or non-array field can be told
// apart from an empty list. Version is any JSON number so 1.0 reads as 1.
type rawSnapshot struct {
	Version *float64        `json:"version"`
	Tasks   json.RawMessage `json:"tasks"`
}

// ParseSnapshot decodes data as a structured snapshot. It fails when data is not
// a JSON object, the version is not SchemaVersion, or tasks is not an array of
// task objects. Unknown fields, including a stored priority, are ignored.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if raw.Version == nil || *raw.Version != float64(SchemaVersion) {
		return Snapshot{}, ErrUnsupportedSnapshot
	}
	if len(raw.Tasks) == 0 || raw.Tasks[0] != '[' {
		return Snapshot{}, errors.New("snapshot tasks must be a list")
	}

	var items []SnapshotTask
	if err := json.Unmarshal(raw.Tasks, &items); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot tasks: %w", err)
	}
	return Snapshot{Version: SchemaVersion, Tasks: items}, nil
}
