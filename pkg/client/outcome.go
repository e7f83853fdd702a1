package client

import "fmt"

type State int

const (
	Complete State = iota
	Pending
)

func (s State) String() string {
	switch s {
	case Complete:
		return "complete"
	case Pending:
		return "pending"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Outcome is the classified result of a submission. A pending outcome
// carries the handle to wait on.
type Outcome struct {
	State    State
	Envelope *Envelope
	Handle   Handle
}

func (o *Outcome) Pending() bool {
	return o != nil && o.State == Pending
}

func (o *Outcome) String() string {
	return fmt.Sprintf("Outcome(state=%s, handle=%s)", o.State, o.Handle)
}

// Classify marks an envelope pending when its result message ends with
// marker. Results that are not text, and any result under an empty marker,
// are complete.
func Classify(envelope *Envelope, handle Handle, marker string) *Outcome {
	outcome := &Outcome{
		State:    Complete,
		Envelope: envelope,
		Handle:   handle,
	}

	if message, ok := envelope.Message(); ok && pending(message, marker) {
		outcome.State = Pending
	}

	return outcome
}
