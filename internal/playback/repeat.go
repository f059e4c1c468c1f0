package playback

import "fmt"

// RepeatState is the player repeat mode. The numeric values are part of the
// wire protocol: clients send and receive Track=0, Context=1, Off=2.
type RepeatState int

const (
	RepeatTrack RepeatState = iota
	RepeatContext
	RepeatOff
)

var repeatNames = map[string]RepeatState{
	"track":   RepeatTrack,
	"context": RepeatContext,
	"off":     RepeatOff,
}

// ParseRepeatState maps the Spotify API repeat_state string to a RepeatState.
func ParseRepeatState(name string) (RepeatState, error) {
	state, ok := repeatNames[name]
	if !ok {
		return RepeatOff, fmt.Errorf("unknown repeat state %q", name)
	}
	return state, nil
}

// Next returns the following state in the cyclic order Off → Track → Context → Off.
func (r RepeatState) Next() RepeatState {
	return (r + 1) % 3
}

// Valid reports whether r is one of the three defined states.
func (r RepeatState) Valid() bool {
	return r >= RepeatTrack && r <= RepeatOff
}

// APIValue returns the Spotify API string for the state.
func (r RepeatState) APIValue() string {
	switch r {
	case RepeatTrack:
		return "track"
	case RepeatContext:
		return "context"
	default:
		return "off"
	}
}
