// Package newmatch holds the new-match screen selection state: which
// adversary to challenge and with which color. The state is stored as an
// opaque JSON blob on the owning instance.
package newmatch

import (
	"encoding/json"
)

// Colors the selector cycles through, in order.
var Colors = []string{"random", "white", "black"}

// State is the current new-match selection.
type State struct {
	AdversaryID string `json:"adversary_id,omitempty"`
	Color       string `json:"color"`
}

type envelope struct {
	NewMatch *State `json:"new_match"`
}

// Default returns the initial selection.
func Default() State {
	return State{Color: Colors[0]}
}

// Load deserializes a selection blob. Corrupt or missing blobs, and invalid
// color values, fall back to the defaults.
func Load(blob string) State {
	state := Default()
	if blob == "" {
		return state
	}
	var env envelope
	if err := json.Unmarshal([]byte(blob), &env); err != nil || env.NewMatch == nil {
		return state
	}
	state.AdversaryID = env.NewMatch.AdversaryID
	if validColor(env.NewMatch.Color) {
		state.Color = env.NewMatch.Color
	}
	return state
}

// Serialize encodes the selection for storage.
func Serialize(state State) string {
	data, err := json.Marshal(envelope{NewMatch: &state})
	if err != nil {
		return ""
	}
	return string(data)
}

// CycleColor rotates the color selection by direction (+1/-1) with wraparound.
func CycleColor(state State, direction int) State {
	idx := 0
	for i, c := range Colors {
		if c == state.Color {
			idx = i
			break
		}
	}
	n := len(Colors)
	state.Color = Colors[((idx+direction)%n+n)%n]
	return state
}

// CycleAdversary rotates the adversary selection by direction within ids,
// which must be in stable display order. With no current selection the first
// entry is the anchor.
func CycleAdversary(state State, ids []string, direction int) State {
	if len(ids) == 0 {
		return state
	}
	idx := 0
	for i, id := range ids {
		if id == state.AdversaryID {
			idx = i
			break
		}
	}
	n := len(ids)
	state.AdversaryID = ids[((idx+direction)%n+n)%n]
	return state
}

func validColor(c string) bool {
	for _, v := range Colors {
		if v == c {
			return true
		}
	}
	return false
}
