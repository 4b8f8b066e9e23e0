package render

import (
	"strings"
	"time"
)

// Spinner is a braille activity indicator.
type Spinner struct {
	frame    int
	lastTick time.Time
	interval time.Duration
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a spinner that advances at most every 80ms.
func NewSpinner() *Spinner {
	return &Spinner{lastTick: time.Now(), interval: 80 * time.Millisecond}
}

// Tick advances the animation if enough time has passed.
// Returns true if the frame changed.
func (s *Spinner) Tick() bool {
	now := time.Now()
	if now.Sub(s.lastTick) < s.interval {
		return false
	}
	s.frame++
	s.lastTick = now
	return true
}

// Frame returns the current animation frame.
func (s *Spinner) Frame() string {
	return spinnerFrames[s.frame%len(spinnerFrames)]
}

// ProgressBar draws fraction (clamped to [0, 1]) as a bar of the given
// width, e.g. "[=====>    ]".
func ProgressBar(width int, fraction float64) string {
	if width < 3 {
		return ""
	}
	inner := width - 2
	switch {
	case fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}

	filled := int(fraction * float64(inner))
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(strings.Repeat("=", filled))
	if filled < inner {
		sb.WriteByte('>')
		sb.WriteString(strings.Repeat(" ", inner-filled-1))
	}
	sb.WriteByte(']')
	return sb.String()
}
