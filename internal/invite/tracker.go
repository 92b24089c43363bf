package invite

// Phase is where an invitation notification is in its lifecycle. A
// resolved notification is removed from the store and has no phase.
type Phase int

const (
	Presented Phase = iota
	Accepting
	Rejecting
)

func (p Phase) String() string {
	switch p {
	case Accepting:
		return "accepting"
	case Rejecting:
		return "rejecting"
	default:
		return "presented"
	}
}

// Tracker records which invitations have an action in flight. It is
// owned by the Update loop and is not safe for concurrent use.
type Tracker struct {
	phases map[string]Phase
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{phases: make(map[string]Phase)}
}

// Begin moves id into phase. It returns false when an action is already
// in flight for id.
func (t *Tracker) Begin(id string, phase Phase) bool {
	if phase == Presented {
		return false
	}
	if t.phases[id] != Presented {
		return false
	}
	t.phases[id] = phase
	return true
}

// Phase returns id's current phase.
func (t *Tracker) Phase(id string) Phase {
	return t.phases[id]
}

// Busy reports whether an action is in flight for id.
func (t *Tracker) Busy(id string) bool {
	return t.phases[id] != Presented
}

// Finish returns id to Presented. Call it with the outcome of every
// action, whether it resolved or failed.
func (t *Tracker) Finish(id string) {
	delete(t.phases, id)
}
