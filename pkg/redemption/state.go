package redemption

import "fmt"

// State is a stage of the redemption workflow.
type State int

const (
	Observed State = iota
	KeyResolved
	AwaitingSignature
	SignatureVerified
	Broadcast
	Done
	Abandoned
)

var stateNames = map[State]string{
	Observed:          "OBSERVED",
	KeyResolved:       "KEY_RESOLVED",
	AwaitingSignature: "AWAITING_SIGNATURE",
	SignatureVerified: "SIGNATURE_VERIFIED",
	Broadcast:         "BROADCAST",
	Done:              "DONE",
	Abandoned:         "ABANDONED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// IsTerminal returns true for states the workflow never leaves.
func (s State) IsTerminal() bool {
	return s == Done || s == Abandoned
}

func (s State) MarshalText() ([]byte, error) {
	if _, ok := stateNames[s]; !ok {
		return nil, fmt.Errorf("unknown state [%d]", int(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown state [%s]", text)
}
