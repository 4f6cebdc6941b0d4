package tasks

// EventKind identifies what a store notification is about.
type EventKind int

const (
	// EventChanged fires after every mutation that altered the queue or counter.
	EventChanged EventKind = iota
	// EventAutoExport fires when the pop counter reaches a multiple of the
	// auto-export interval.
	EventAutoExport
)

func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventAutoExport:
		return "auto_export"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after a store operation completes.
type Event struct {
	Kind     EventKind
	PopCount int
	// Task is the popped task for pop-triggered events.
	Task *Task
	// Snapshot is the queue as it stood when the event was emitted.
	Snapshot Snapshot
}

// Listener receives store events.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}
