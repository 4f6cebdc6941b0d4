package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dsjohal14/taskpop/internal/scope/db"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultStateKey is the persistence key the queue state is stored under.
	DefaultStateKey = "taskQueue.state"

	// DefaultAutoExportEvery is the number of pops between auto-exports.
	DefaultAutoExportEvery = 5

	defaultPersistTimeout = 5 * time.Second
)

// Persistence is the key-value channel the store writes its state to.
type Persistence interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store owns the task queue and the pop counter. Every exported method runs to
// completion before another can start; listeners are called after the lock is
// released.
type Store struct {
	mu       sync.Mutex
	queue    []Task
	popCount int
	current  *Task

	kv              Persistence
	key             string
	newID           func() string
	autoExportEvery int
	checklist       bool
	persistTimeout  time.Duration
	logger          zerolog.Logger

	subMu   sync.Mutex
	subs    []subscription
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithPersistence sets the persistence channel and the key the state lives under.
// An empty key falls back to DefaultStateKey.
func WithPersistence(kv Persistence, key string) Option {
	return func(s *Store) {
		s.kv = kv
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithIDGenerator replaces the UUID generator used for new tasks.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithAutoExportEvery sets how many pops trigger an auto-export event. Zero disables it.
func WithAutoExportEvery(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.autoExportEvery = n
		}
	}
}

// WithChecklistImport restricts line import to unchecked Markdown checkboxes.
func WithChecklistImport(enabled bool) Option {
	return func(s *Store) {
		s.checklist = enabled
	}
}

// NewStore creates an empty store. Call LoadPersisted to restore prior state.
func NewStore(opts ...Option) *Store {
	s := &Store{
		queue:           make([]Task, 0),
		key:             DefaultStateKey,
		newID:           uuid.NewString,
		autoExportEvery: DefaultAutoExportEvery,
		persistTimeout:  defaultPersistTimeout,
		logger:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTask queues a new task. Blank descriptions are ignored.
func (s *Store) AddTask(description string) (Task, bool) {
	t, ok := normalize(Task{Description: description})
	if !ok {
		return Task{}, false
	}

	s.mu.Lock()
	t.ID = s.newID()
	s.queue = append(s.queue, t)
	sortQueue(s.queue)
	s.persistLocked()
	ev := s.eventLocked(EventChanged, nil)
	s.mu.Unlock()

	s.logger.Debug().Str("task_id", t.ID).Int("priority", t.Priority).Msg("task added")
	s.emit(ev)
	return t, true
}

// ImportLines adds one task per non-empty line of text, skipping descriptions
// that are already queued. It returns how many tasks were added.
func (s *Store) ImportLines(text string) int {
	s.mu.Lock()
	seen := make(map[string]struct{}, len(s.queue))
	for _, t := range s.queue {
		seen[t.Description] = struct{}{}
	}

	added := 0
	for _, line := range splitLines(text, s.checklist) {
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		s.queue = append(s.queue, Task{ID: s.newID(), Description: line, Priority: PriorityOf(line)})
		added++
	}

	if added == 0 {
		s.mu.Unlock()
		return 0
	}
	sortQueue(s.queue)
	s.persistLocked()
	ev := s.eventLocked(EventChanged, nil)
	s.mu.Unlock()

	s.logger.Debug().Int("added", added).Msg("lines imported")
	s.emit(ev)
	return added
}

// ImportSnapshot replaces the queue with the snapshot's tasks. Priorities are
// recomputed; blank descriptions are dropped and missing ids regenerated.
func (s *Store) ImportSnapshot(snap Snapshot) error {
	if snap.Version != SchemaVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedSnapshot, snap.Version)
	}

	s.mu.Lock()
	queue := make([]Task, 0, len(snap.Tasks))
	for _, st := range snap.Tasks {
		t, ok := normalize(Task{ID: strings.TrimSpace(st.ID), Description: st.Description})
		if !ok {
			continue
		}
		if t.ID == "" {
			t.ID = s.newID()
		}
		queue = append(queue, t)
	}
	sortQueue(queue)
	s.queue = queue
	s.persistLocked()
	ev := s.eventLocked(EventChanged, nil)
	s.mu.Unlock()

	s.logger.Debug().Int("tasks", len(queue)).Msg("snapshot imported")
	s.emit(ev)
	return nil
}

// ImportMode reports how Import interpreted its input.
type ImportMode string

// Import modes.
const (
	ImportModeSnapshot ImportMode = "snapshot"
	ImportModeLines    ImportMode = "lines"
)

// ImportResult describes the outcome of Import.
type ImportResult struct {
	Mode  ImportMode `json:"mode"`
	Added int        `json:"added"`
	Total int        `json:"total"`
}

// utf8BOM is written at the start of text files by some editors
var utf8BOM = []byte("\xef\xbb\xbf")

// Import loads file contents. A valid snapshot replaces the queue; anything
// else, including JSON with an unknown version, is imported line by line.
// A leading UTF-8 byte order mark is ignored.
func (s *Store) Import(data []byte) ImportResult {
	data = bytes.TrimPrefix(data, utf8BOM)

	snap, err := ParseSnapshot(data)
	if err == nil {
		// ImportSnapshot cannot fail on a parsed snapshot.
		_ = s.ImportSnapshot(snap)
		total := s.Len()
		return ImportResult{Mode: ImportModeSnapshot, Added: total, Total: total}
	}
	s.logger.Debug().Err(err).Msg("not a snapshot, importing as text")

	added := s.ImportLines(string(data))
	return ImportResult{Mode: ImportModeLines, Added: added, Total: s.Len()}
}

// PopNext removes and returns the highest-priority task. ok is false when the
// queue is empty, in which case nothing changes.
func (s *Store) PopNext() (Task, bool) {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return Task{}, false
	}

	next := s.queue[0]
	s.queue = slices.Delete(s.queue, 0, 1)
	s.popCount++
	current := next
	s.current = &current
	s.persistLocked()

	events := []Event{s.eventLocked(EventChanged, &next)}
	if s.autoExportEvery > 0 && s.popCount%s.autoExportEvery == 0 {
		events = append(events, s.eventLocked(EventAutoExport, &next))
	}
	popCount := s.popCount
	s.mu.Unlock()

	s.logger.Debug().Str("task_id", next.ID).Int("pop_count", popCount).Msg("task popped")
	s.emit(events...)
	return next, true
}

// ExportSnapshot returns the queue in its current order without priorities.
func (s *Store) ExportSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Tasks returns a copy of the queue in priority order.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.queue))
	copy(out, s.queue)
	return out
}

// Len returns the number of queued tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// PopCount returns the number of completed pops.
func (s *Store) PopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popCount
}

// Current returns the most recently popped task in this process.
func (s *Store) Current() (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Task{}, false
	}
	return *s.current, true
}

// LoadPersisted restores the queue and counter from the persistence channel.
// Missing or corrupted state leaves the store empty; the failure is only logged.
func (s *Store) LoadPersisted() {
	if s.kv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()

	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, db.ErrNotFound) {
		s.logger.Debug().Str("key", s.key).Msg("no persisted state")
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("failed to read persisted state")
		return
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("persisted state is corrupted, starting empty")
		return
	}

	queue := make([]Task, 0, len(state.Queue))
	for _, t := range state.Queue {
		if t, ok := normalize(t); ok {
			if t.ID == "" {
				t.ID = s.newID()
			}
			queue = append(queue, t)
		}
	}
	sortQueue(queue)

	s.mu.Lock()
	s.queue = queue
	s.popCount = max(state.PopCount, 0)
	ev := s.eventLocked(EventChanged, nil)
	s.mu.Unlock()

	s.logger.Info().Int("tasks", len(queue)).Int("pop_count", ev.PopCount).Msg("persisted state loaded")
	s.emit(ev)
}

// SavePersisted writes the queue and counter to the persistence channel.
func (s *Store) SavePersisted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) saveLocked() error {
	if s.kv == nil {
		return nil
	}
	data, err := json.Marshal(State{Queue: s.queue, PopCount: s.popCount})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()
	if err := s.kv.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

func (s *Store) persistLocked() {
	if err := s.saveLocked(); err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("failed to persist state")
	}
}

func (s *Store) snapshotLocked() Snapshot {
	items := make([]SnapshotTask, len(s.queue))
	for i, t := range s.queue {
		items[i] = SnapshotTask{ID: t.ID, Description: t.Description}
	}
	return Snapshot{Version: SchemaVersion, Tasks: items}
}

func (s *Store) eventLocked(kind EventKind, task *Task) Event {
	return Event{
		Kind:     kind,
		PopCount: s.popCount,
		Task:     task,
		Snapshot: s.snapshotLocked(),
	}
}

func (s *Store) emit(events ...Event) {
	s.subMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, ev := range events {
		for _, sub := range subs {
			s.notify(sub.fn, ev)
		}
	}
}

func (s *Store) notify(fn Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("event", ev.Kind.String()).Msg("store listener panicked")
		}
	}()
	fn(ev)
}
