package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"webgu/pipeline"
	"webgu/render"
)

const progressWidth = 24

// progressShell draws a one-line progress bar on a terminal. On anything
// else it only reports errors.
type progressShell struct {
	w        io.Writer
	terminal bool
	spinner  *render.Spinner

	mu     sync.Mutex
	status string
	frac   float64
}

func newProgressShell(f *os.File) *progressShell {
	_, _, err := render.TerminalSize(f)
	return &progressShell{w: f, terminal: err == nil, spinner: render.NewSpinner()}
}

func (s *progressShell) draw() {
	if !s.terminal {
		return
	}
	s.spinner.Tick()
	fmt.Fprintf(s.w, "\r\033[K%s %s %s", s.spinner.Frame(), render.ProgressBar(progressWidth, s.frac), s.status)
}

func (s *progressShell) OnProgress(f float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frac = f
	s.draw()
}

func (s *progressShell) OnStatus(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = msg
	s.draw()
}

func (s *progressShell) OnRendered(*pipeline.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal {
		fmt.Fprint(s.w, "\r\033[K")
	}
}

func (s *progressShell) OnError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal {
		fmt.Fprint(s.w, "\r\033[K")
	}
}
