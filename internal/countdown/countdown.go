// Package countdown holds the cancellable auto-capture timer shared by the
// document and face scanners.
package countdown

import "time"

const (
	DefaultFrom = 3
	DefaultStep = time.Second
)

type Phase string

const (
	Idle     Phase = "idle"
	Counting Phase = "counting"
	Fired    Phase = "fired"
)

// Event is what a single Update did to the timer.
type Event int

const (
	None Event = iota
	Started
	Ticked
	Cancelled
	Fire
)

func (e Event) String() string {
	switch e {
	case Started:
		return "started"
	case Ticked:
		return "ticked"
	case Cancelled:
		return "cancelled"
	case Fire:
		return "fire"
	default:
		return "none"
	}
}

type State struct {
	Phase     Phase `json:"phase"`
	Remaining int   `json:"remaining"`
}

// Countdown is driven by the scan loop: every refresh it is handed the latest
// readiness value and the current time. Nothing runs in the background, so a
// cancellation takes effect in the same Update that observed it and no step
// can fire afterwards.
type Countdown struct {
	From int
	Step time.Duration

	state State
	next  time.Time
}

func New(from int, step time.Duration) *Countdown {
	if step <= 0 {
		step = DefaultStep
	}
	return &Countdown{From: from, Step: step, state: State{Phase: Idle}}
}

// Update advances the timer.
//
// Idle and ready starts counting from From. While counting, ready going false
// cancels back to Idle; otherwise each elapsed Step decrements once, and the
// decrement that reaches zero fires. The firing step does not consult ready
// again beyond the value passed to this call.
func (c *Countdown) Update(ready bool, now time.Time) Event {
	switch c.state.Phase {
	case Idle:
		if !ready {
			return None
		}
		if c.From <= 0 {
			c.state = State{Phase: Fired}
			return Fire
		}
		c.state = State{Phase: Counting, Remaining: c.From}
		c.next = now.Add(c.Step)
		return Started

	case Counting:
		if !ready {
			c.Cancel()
			return Cancelled
		}
		if now.Before(c.next) {
			return None
		}
		c.state.Remaining--
		if c.state.Remaining <= 0 {
			c.state = State{Phase: Fired}
			return Fire
		}
		c.next = c.next.Add(c.Step)
		return Ticked
	}

	return None
}

// Cancel drops any pending count. A fired timer stays fired until Reset.
func (c *Countdown) Cancel() {
	if c.state.Phase == Counting {
		c.state = State{Phase: Idle}
		c.next = time.Time{}
	}
}

func (c *Countdown) Reset() {
	c.state = State{Phase: Idle}
	c.next = time.Time{}
}

func (c *Countdown) State() State {
	return c.state
}
