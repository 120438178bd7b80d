// Package ui provides terminal presentation helpers.
package ui

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows an in-flight indicator on stderr while a request runs.
// Stdout stays clean so the reply can be piped.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a stderr spinner. Callers should only construct one
// when stderr is an interactive terminal.
func NewSpinner() *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " waiting for model..."
	_ = s.Color("cyan")
	return &Spinner{s: s}
}

// Start begins the animation.
func (p *Spinner) Start() {
	p.s.Start()
}

// Stop halts the animation and clears the line.
func (p *Spinner) Stop() {
	p.s.Stop()
}
