package autosave

// Status is what the UI shows about the latest edits.
type Status int

const (
	StatusIdle Status = iota
	StatusSaving
	StatusSaved
	StatusError
	StatusOffline
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	case StatusError:
		return "error"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// statusModel is the display state machine. It holds the current status and
// the error message shown with StatusError, nothing else.
type statusModel struct {
	status  Status
	message string
}

func (m *statusModel) set(s Status, msg string) {
	m.status = s
	m.message = msg
}

// begin is applied when an attempt starts; attempts only start while online.
func (m *statusModel) begin() {
	m.set(StatusSaving, "")
}

// succeed applies a successful attempt. Offline keeps its display.
func (m *statusModel) succeed() {
	if m.status == StatusOffline {
		return
	}
	m.set(StatusSaved, "")
}

// fail applies a failed attempt while online.
func (m *statusModel) fail(msg string) {
	if m.status == StatusOffline {
		return
	}
	m.set(StatusError, msg)
}

func (m *statusModel) offline() {
	m.set(StatusOffline, "")
}

// online leaves Offline; inFlight reports an attempt that is still running.
func (m *statusModel) online(inFlight bool) {
	if m.status != StatusOffline {
		return
	}
	if inFlight {
		m.set(StatusSaving, "")
		return
	}
	m.set(StatusIdle, "")
}

// settle ends the Saved display window. It reports whether anything changed.
func (m *statusModel) settle() bool {
	if m.status != StatusSaved {
		return false
	}
	m.set(StatusIdle, "")
	return true
}
