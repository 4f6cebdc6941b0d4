package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/dsjohal14/taskpop/internal/scope/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequentialIDs returns an id generator producing id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func descriptions(queue []Task) []string {
	out := make([]string, len(queue))
	for i, t := range queue {
		out[i] = t.Description
	}
	return out
}

func assertSorted(t *testing.T, queue []Task) {
	t.Helper()
	for i := 1; i < len(queue); i++ {
		assert.GreaterOrEqual(t, queue[i-1].Priority, queue[i].Priority, "queue not sorted at %d", i)
	}
	for _, task := range queue {
		assert.Equal(t, PriorityOf(task.Description), task.Priority)
	}
}

func TestAddTaskOrdering(t *testing.T) {
	s := NewStore(WithIDGenerator(sequentialIDs()))

	task, ok := s.AddTask("Buy milk")
	require.True(t, ok)
	assert.Equal(t, 8, task.Priority)
	assert.Equal(t, "id-1", task.ID)

	s.AddTask("Call mom")
	assert.Equal(t, []string{"Buy milk", "Call mom"}, descriptions(s.Tasks()))

	s.AddTask("Write the quarterly report")
	assert.Equal(t, []string{"Write the quarterly report", "Buy milk", "Call mom"}, descriptions(s.Tasks()))
	assertSorted(t, s.Tasks())

	popped, ok := s.PopNext()
	require.True(t, ok)
	assert.Equal(t, "Write the quarterly report", popped.Description)
	assert.Equal(t, []string{"Buy milk", "Call mom"}, descriptions(s.Tasks()))
}

func TestAddTaskStableOnTies(t *testing.T) {
	s := NewStore()
	inputs := []string{"aaa", "bb", "ccc", "dd", "eee", "f", "gggg"}
	for _, in := range inputs {
		s.AddTask(in)
	}

	assert.Equal(t, []string{"gggg", "aaa", "ccc", "eee", "bb", "dd", "f"}, descriptions(s.Tasks()))
	assertSorted(t, s.Tasks())
}

func TestAddTaskIgnoresBlank(t *testing.T) {
	s := NewStore()
	for _, in := range []string{"", "   ", "\t\n"} {
		_, ok := s.AddTask(in)
		assert.False(t, ok, "blank %q should be ignored", in)
	}
	assert.Equal(t, 0, s.Len())
}

func TestAddTaskTrimsAndAllowsDuplicates(t *testing.T) {
	s := NewStore()
	task, ok := s.AddTask("  write docs  ")
	require.True(t, ok)
	assert.Equal(t, "write docs", task.Description)
	assert.Equal(t, 10, task.Priority)

	s.AddTask("write docs")
	assert.Equal(t, 2, s.Len())
}

func TestPriorityCountsCharacters(t *testing.T) {
	assert.Equal(t, 4, PriorityOf("café"))
	assert.Equal(t, 0, PriorityOf(""))
}

func TestImportLinesDeduplicates(t *testing.T) {
	s := NewStore()
	added := s.ImportLines("task a\n\ntask a\ntask b")
	assert.Equal(t, 2, added)
	assert.ElementsMatch(t, []string{"task a", "task b"}, descriptions(s.Tasks()))

	added = s.ImportLines("task b\r\ntask c\r\n")
	assert.Equal(t, 1, added)
	assert.Equal(t, 3, s.Len())
}

func TestImportLinesAgainstManualPush(t *testing.T) {
	s := NewStore()
	s.AddTask("existing")
	added := s.ImportLines("  existing  \nnew one")
	assert.Equal(t, 1, added)
	assert.Equal(t, []string{"existing", "new one"}, descriptions(s.Tasks()))
}

func TestImportLinesChecklistMode(t *testing.T) {
	s := NewStore(WithChecklistImport(true))
	text := "# Today\n- [ ] write report\n- [x] done already\n- [ ]   call bank  \nplain line\n"
	added := s.ImportLines(text)
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"write report", "call bank"}, descriptions(s.Tasks()))
}

func TestImportSnapshotRecomputesPriority(t *testing.T) {
	s := NewStore()
	s.AddTask("to be replaced")

	data := []byte(`{"version":1,"tasks":[
		{"id":"a","desc":"short","priority":999},
		{"id":"b","desc":"a much longer description"},
		{"id":"c","desc":"   "},
		{"desc":"no id"}
	]}`)
	snap, err := ParseSnapshot(data)
	require.NoError(t, err)
	require.NoError(t, s.ImportSnapshot(snap))

	queue := s.Tasks()
	require.Len(t, queue, 3)
	assert.Equal(t, []string{"a much longer description", "short", "no id"}, descriptions(queue))
	assert.Equal(t, 5, queue[1].Priority)
	assert.Equal(t, "a", queue[1].ID)
	assert.NotEmpty(t, queue[2].ID)
	assertSorted(t, queue)
}

func TestImportSnapshotRejectsVersion(t *testing.T) {
	s := NewStore()
	s.AddTask("keep me")

	err := s.ImportSnapshot(Snapshot{Version: 2})
	assert.ErrorIs(t, err, ErrUnsupportedSnapshot)
	assert.Equal(t, 1, s.Len())
}

func TestImportFallsBackToLines(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		mode     ImportMode
		expected []string
	}{
		{"snapshot", `{"version":1,"tasks":[{"id":"x","desc":"from json"}]}`, ImportModeSnapshot, []string{"from json"}},
		{"empty snapshot", `{"version":1,"tasks":[]}`, ImportModeSnapshot, []string{}},
		{"plain text", "one\ntwo", ImportModeLines, []string{"one", "two"}},
		{"wrong version", "{\"version\":2,\n\"tasks\":[]}", ImportModeLines, []string{"{\"version\":2,", "\"tasks\":[]}"}},
		{"tasks not a list", `{"version":1,"tasks":"nope"}`, ImportModeLines, []string{`{"version":1,"tasks":"nope"}`}},
		{"broken json", `{"version":1,`, ImportModeLines, []string{`{"version":1,`}},
		{"snapshot with byte order mark", "\ufeff{\"version\":1,\"tasks\":[{\"id\":\"a\",\"desc\":\"x\"}]}", ImportModeSnapshot, []string{"x"}},
		{"text with byte order mark", "\ufefffirst\nsecond", ImportModeLines, []string{"first", "second"}},
		{"version written as 1.0", `{"version":1.0,"tasks":[{"id":"a","desc":"float version"}]}`, ImportModeSnapshot, []string{"float version"}},
		{"fractional version", `{"version":1.5,"tasks":[]}`, ImportModeLines, []string{`{"version":1.5,"tasks":[]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			res := s.Import([]byte(tt.data))
			assert.Equal(t, tt.mode, res.Mode)
			assert.ElementsMatch(t, tt.expected, descriptions(s.Tasks()))
			assert.Equal(t, s.Len(), res.Total)
		})
	}
}

func TestPopNextEmpty(t *testing.T) {
	s := NewStore()
	_, ok := s.PopNext()
	assert.False(t, ok)
	assert.Equal(t, 0, s.PopCount())
	_, ok = s.Current()
	assert.False(t, ok)
}

func TestPopNextRemovesHead(t *testing.T) {
	s := NewStore()
	s.ImportLines("a\nbbb\ncc")
	before := s.Len()

	task, ok := s.PopNext()
	require.True(t, ok)
	assert.Equal(t, "bbb", task.Description)
	assert.Equal(t, before-1, s.Len())
	assert.Equal(t, 1, s.PopCount())

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, task, current)
}

func TestAutoExportEveryFivePops(t *testing.T) {
	s := NewStore()
	for i := 0; i < 16; i++ {
		s.AddTask(fmt.Sprintf("task %02d", i))
	}

	var fired []int
	s.Subscribe(func(ev Event) {
		if ev.Kind == EventAutoExport {
			fired = append(fired, ev.PopCount)
		}
	})

	for i := 0; i < 16; i++ {
		s.PopNext()
	}
	assert.Equal(t, []int{5, 10, 15}, fired)

	// Empty pops never count
	s.PopNext()
	s.PopNext()
	s.PopNext()
	s.PopNext()
	assert.Equal(t, []int{5, 10, 15}, fired)
}

func TestAutoExportDisabled(t *testing.T) {
	s := NewStore(WithAutoExportEvery(0))
	for i := 0; i < 5; i++ {
		s.AddTask(fmt.Sprintf("task %d", i))
	}
	fired := 0
	s.Subscribe(func(ev Event) {
		if ev.Kind == EventAutoExport {
			fired++
		}
	})
	for i := 0; i < 5; i++ {
		s.PopNext()
	}
	assert.Equal(t, 0, fired)
}

func TestAutoExportEventCarriesSnapshot(t *testing.T) {
	s := NewStore(WithAutoExportEvery(1))
	s.ImportLines("first task\nsecond")

	var got Event
	s.Subscribe(func(ev Event) {
		if ev.Kind == EventAutoExport {
			got = ev
		}
	})
	s.PopNext()

	require.NotNil(t, got.Task)
	assert.Equal(t, "first task", got.Task.Description)
	assert.Equal(t, []SnapshotTask{{ID: s.Tasks()[0].ID, Description: "second"}}, got.Snapshot.Tasks)
}

func TestListenerPanicDoesNotBreakPop(t *testing.T) {
	s := NewStore(WithAutoExportEvery(1))
	s.AddTask("only")
	s.Subscribe(func(Event) { panic("export channel unavailable") })

	task, ok := s.PopNext()
	assert.True(t, ok)
	assert.Equal(t, "only", task.Description)
	assert.Equal(t, 1, s.PopCount())
}

func TestUnsubscribe(t *testing.T) {
	s := NewStore()
	calls := 0
	unsubscribe := s.Subscribe(func(Event) { calls++ })
	s.AddTask("one")
	unsubscribe()
	s.AddTask("two")
	assert.Equal(t, 1, calls)
}

func TestExportImportRoundTrip(t *testing.T) {
	s := NewStore()
	s.ImportLines("alpha\nbeta gamma\nde\nepsilon zeta eta")
	s.AddTask("beta gamma")

	snap := s.ExportSnapshot()
	assert.Equal(t, SchemaVersion, snap.Version)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "priority")

	other := NewStore()
	res := other.Import(data)
	assert.Equal(t, ImportModeSnapshot, res.Mode)
	assert.Equal(t, s.Tasks(), other.Tasks())
}

func TestPersistenceRoundTrip(t *testing.T) {
	kv := db.NewMemKV()
	s := NewStore(WithPersistence(kv, ""))
	s.ImportLines("one\nthree\nfive five")
	s.PopNext()

	restored := NewStore(WithPersistence(kv, ""))
	restored.LoadPersisted()
	assert.Equal(t, s.Tasks(), restored.Tasks())
	assert.Equal(t, 1, restored.PopCount())
}

func TestLoadPersistedRecomputesPriority(t *testing.T) {
	kv := db.NewMemKV()
	blob := `{"queue":[{"id":"1","desc":"x","priority":100},{"id":"2","desc":"longer","priority":1},{"id":"3","desc":"  "}],"popCount":7}`
	require.NoError(t, kv.Put(context.Background(), DefaultStateKey, []byte(blob)))

	s := NewStore(WithPersistence(kv, DefaultStateKey))
	s.LoadPersisted()

	assert.Equal(t, []string{"longer", "x"}, descriptions(s.Tasks()))
	assert.Equal(t, 1, s.Tasks()[1].Priority)
	assert.Equal(t, 7, s.PopCount())
}

func TestLoadPersistedCorrupted(t *testing.T) {
	kv := db.NewMemKV()
	require.NoError(t, kv.Put(context.Background(), DefaultStateKey, []byte("{not json")))

	s := NewStore(WithPersistence(kv, DefaultStateKey))
	s.LoadPersisted()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.PopCount())

	// The store keeps working and overwrites the corrupted blob
	s.AddTask("fresh start")
	fresh := NewStore(WithPersistence(kv, DefaultStateKey))
	fresh.LoadPersisted()
	assert.Equal(t, []string{"fresh start"}, descriptions(fresh.Tasks()))
}

func TestLoadPersistedMissing(t *testing.T) {
	s := NewStore(WithPersistence(db.NewMemKV(), "absent"))
	s.LoadPersisted()
	assert.Equal(t, 0, s.Len())
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("disk on fire")
}

func (failingKV) Put(context.Context, string, []byte) error {
	return fmt.Errorf("disk on fire")
}

func TestPersistenceFailuresAreNotFatal(t *testing.T) {
	s := NewStore(WithPersistence(failingKV{}, ""))
	s.LoadPersisted()

	_, ok := s.AddTask("still works")
	assert.True(t, ok)
	_, ok = s.PopNext()
	assert.True(t, ok)
	assert.Error(t, s.SavePersisted())
}

func TestEveryMutationPersists(t *testing.T) {
	kv := db.NewMemKV()
	s := NewStore(WithPersistence(kv, "k"))

	readCount := func() int {
		data, err := kv.Get(context.Background(), "k")
		require.NoError(t, err)
		var st State
		require.NoError(t, json.Unmarshal(data, &st))
		return len(st.Queue)
	}

	s.AddTask("a")
	assert.Equal(t, 1, readCount())
	s.ImportLines("b\nc")
	assert.Equal(t, 3, readCount())
	s.PopNext()
	assert.Equal(t, 2, readCount())
	require.NoError(t, s.ImportSnapshot(Snapshot{Version: 1}))
	assert.Equal(t, 0, readCount())
}

func TestParseSnapshotNumericVersion(t *testing.T) {
	snap, err := ParseSnapshot([]byte(`{"version":1.0,"tasks":[]}`))
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, snap.Version)

	_, err = ParseSnapshot([]byte(`{"version":"1","tasks":[]}`))
	assert.Error(t, err, "a string version is not a number")
}
