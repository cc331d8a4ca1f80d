package deck

// EventKind names a protocol step.
type EventKind string

const (
	EventObserve  EventKind = "observe"
	EventCommit   EventKind = "commit"
	EventRelocate EventKind = "relocate"
)

// Event is one successful protocol step.
//
// Seq is a monotonic per-engine counter starting at 1 after Reset. Observing
// an already committed card is free and produces no event.
type Event struct {
	Seq    int64
	Turn   int
	Kind   EventKind
	Index  int // source index for relocate
	Target int // -1 unless Kind is EventRelocate
	Value  int
}

// Recorder receives protocol events as they happen.
type Recorder interface {
	Record(Event)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(Event)

// Record calls f(ev).
func (f RecorderFunc) Record(ev Event) {
	f(ev)
}

// EventLog is a Recorder that keeps every event in order.
type EventLog struct {
	Events []Event
}

// Record appends ev.
func (l *EventLog) Record(ev Event) {
	l.Events = append(l.Events, ev)
}

// Count returns the number of recorded events of the given kind.
func (l *EventLog) Count(kind EventKind) int {
	n := 0
	for _, ev := range l.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
