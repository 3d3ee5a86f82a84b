// Package feedback tracks whether the rendered output is current and what the
// convert control should show.
package feedback

import (
	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/models"
)

// State is the feedback state of an editor pair
type State int

const (
	StateDraft State = iota
	StateConverting
	StateSuccess
	StateError
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StateConverting:
		return "converting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Event drives a transition
type Event int

const (
	// EventEdit is a content or format change
	EventEdit Event = iota
	EventConvert
	EventConverted
	EventFailed
)

// String returns the event name
func (e Event) String() string {
	switch e {
	case EventEdit:
		return "edit"
	case EventConvert:
		return "convert"
	case EventConverted:
		return "converted"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Next returns the state reached from s on e. Events that do not apply in s
// leave it unchanged.
func Next(s State, e Event) State {
	switch e {
	case EventEdit:
		return StateDraft
	case EventConvert:
		return StateConverting
	case EventConverted:
		if s == StateConverting {
			return StateSuccess
		}
	case EventFailed:
		if s == StateConverting {
			return StateError
		}
	}
	return s
}

// Labels shown on the convert control
const (
	LabelDraft      = "Convert →"
	LabelConverting = "Converting…"
	LabelSuccess    = "Success!"
	LabelError      = "Error"
)

// Ticket identifies one conversion request. Only the newest ticket's outcome is applied.
type Ticket uint64

// View is what a front end renders
type View struct {
	State         State
	Label         string
	Enabled       bool
	Dimmed        bool
	Output        string
	SourceMessage string
	TargetMessage string
}

// Machine holds the feedback state, the rendered output and the per-side
// messages for one editor pair. It is not safe for concurrent use.
type Machine struct {
	state    State
	latest   Ticket
	output   string
	messages map[models.Side]string
}

// NewMachine returns a machine in the draft state
func NewMachine() *Machine {
	return &Machine{
		state:    StateDraft,
		messages: make(map[models.Side]string),
	}
}

// State returns the current state
func (m *Machine) State() State {
	return m.state
}

// Edit marks the output stale. An in-flight conversion is superseded and its
// outcome will be discarded.
func (m *Machine) Edit() {
	if m.state == StateConverting {
		m.latest++
	}
	m.state = Next(m.state, EventEdit)
}

// Start begins a conversion. It fails with ErrBusy while one is in flight.
func (m *Machine) Start() (Ticket, error) {
	if m.state == StateConverting {
		return 0, errors.ErrBusy
	}
	return m.begin(), nil
}

// Supersede begins a conversion even if one is in flight; the older one becomes stale.
func (m *Machine) Supersede() Ticket {
	return m.begin()
}

func (m *Machine) begin() Ticket {
	m.latest++
	m.state = StateConverting
	clear(m.messages)
	return m.latest
}

// Resolve applies the outcome of the conversion identified by t. It reports
// false and changes nothing when t is stale.
func (m *Machine) Resolve(t Ticket, out models.Outcome) bool {
	if t != m.latest || m.state != StateConverting {
		return false
	}

	if out.Failed {
		m.state = Next(m.state, EventFailed)
		m.output = ""
		m.messages[out.Side] = out.Message
		return true
	}

	m.state = Next(m.state, EventConverted)
	m.output = out.Text
	return true
}

// View renders the current state
func (m *Machine) View() View {
	v := View{
		State:         m.state,
		Enabled:       m.state != StateConverting,
		Dimmed:        m.state == StateDraft,
		Output:        m.output,
		SourceMessage: m.messages[models.SideSource],
		TargetMessage: m.messages[models.SideTarget],
	}

	switch m.state {
	case StateConverting:
		v.Label = LabelConverting
	case StateSuccess:
		v.Label = LabelSuccess
	case StateError:
		v.Label = LabelError
	default:
		v.Label = LabelDraft
	}
	return v
}
