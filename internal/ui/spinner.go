package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// SpinnerFrames are the glyphs for both the line spinner and the Bubbles
// spinner in the cluster header.
var SpinnerFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10,
}

// SpinnerState is where a Spinner is in its lifecycle.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerInProgress
	SpinnerSuccess
	SpinnerFailed
)

// Spinner animates a single status line while a blocking step runs, then
// replaces it with a final glyph and the elapsed time.
type Spinner struct {
	mu        sync.Mutex
	label     string
	state     SpinnerState
	frame     int
	startTime time.Time
	out       io.Writer
	stopChan  chan struct{}
	doneChan  chan struct{}
	running   bool
	lastLen   int
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer, label string) *Spinner {
	return &Spinner{label: label, out: out}
}

// Start begins the animation. Calling Start twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.state = SpinnerInProgress
	s.startTime = time.Now()
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	s.mu.Unlock()

	s.render()
	go s.animate()
}

// Stop halts the animation without changing state.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	<-s.doneChan
}

// Success stops the spinner and marks it as successful.
func (s *Spinner) Success() {
	s.finish(SpinnerSuccess)
}

// Fail stops the spinner and marks it as failed.
func (s *Spinner) Fail() {
	s.finish(SpinnerFailed)
}

// State returns the current state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Label returns the spinner's label.
func (s *Spinner) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

func (s *Spinner) finish(state SpinnerState) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state

	symbol, color := SymbolComplete, ColorSuccess
	if state == SpinnerFailed {
		symbol, color = SymbolFail, ColorError
	}
	timing := lipgloss.NewStyle().Foreground(ColorMuted).Render(formatDuration(time.Since(s.startTime)))

	s.clear()
	fmt.Fprintf(s.out, "%s %s %s\n", lipgloss.NewStyle().Foreground(color).Render(symbol), s.label, timing)
}

func (s *Spinner) animate() {
	interval := SpinnerFrames.FPS
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(s.doneChan)

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(SpinnerFrames.Frames)
			s.mu.Unlock()
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	glyph := lipgloss.NewStyle().Foreground(ColorSecondary).Render(SpinnerFrames.Frames[s.frame])
	line := fmt.Sprintf("%s %s...", glyph, s.label)

	s.clear()
	fmt.Fprint(s.out, line)
	s.lastLen = lipgloss.Width(line)
}

// clear blanks the previously rendered line. Callers hold mu.
func (s *Spinner) clear() {
	if s.lastLen == 0 {
		return
	}
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.lastLen)+"\r")
	s.lastLen = 0
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
