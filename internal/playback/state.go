// Package playback drives a script across a presentation surface: it owns
// the loaded script, lays out each line, shows it for a fixed time, clears
// it and moves on until the script is finished.
package playback

import "fmt"

// State is a step of the playback state machine.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StatePlaying
	StateCleared
	StateFinished
	StateFailed
	StateCancelled
)

var stateNames = map[State]string{
	StateIdle:      "Idle",
	StateLoading:   "Loading",
	StateReady:     "Ready",
	StatePlaying:   "Playing",
	StateCleared:   "Cleared",
	StateFinished:  "Finished",
	StateFailed:    "Failed",
	StateCancelled: "Cancelled",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateFailed || s == StateCancelled
}

// Event is one transition. Index is the line being played or cleared,
// -1 for states that are not tied to a line.
type Event struct {
	State State
	Index int
	Total int
	Err   error
}

// String renders the event as State or State(i).
func (e Event) String() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s(%d)", e.State, e.Index)
	}
	return e.State.String()
}
