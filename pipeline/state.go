// Package pipeline drives one navigation from URL to render nodes:
// fetch, scan, project, then hand the result to the shell.
package pipeline

// State is a pipeline stage.
type State int

const (
	Idle State = iota
	Fetching
	Scanning
	Rendering
	Done
	Failed
)

var stateNames = [...]string{
	Idle:      "Idle",
	Fetching:  "Fetching",
	Scanning:  "Scanning",
	Rendering: "Rendering",
	Done:      "Done",
	Failed:    "Failed",
}

// String returns the state name as shown in the status bar.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}
