package player

import "fmt"

// State is the controller's view of the transport.
//
//	Stopped --play--> Playing <--play/pause--> Paused
//	   ^                 |                        |
//	   +------stop-------+----------stop----------+
//
// Stopped keeps the media loaded; the next play starts it over.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

var stateNames = [...]string{
	Stopped: "stopped",
	Playing: "playing",
	Paused:  "paused",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText writes the state name, for JSON payloads and logs.
func (s State) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stateNames) {
		return nil, fmt.Errorf("invalid state %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText parses a name written by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}
