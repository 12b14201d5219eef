package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type spinnerState int

const (
	spinnerPending spinnerState = iota
	spinnerInProgress
	spinnerSuccess
	spinnerFailed
)

// Braille frames, the same family the dashboard graphs are drawn with.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerTick = 80 * time.Millisecond

// Spinner shows an animated one-line status while a request is in flight.
type Spinner struct {
	mu        sync.Mutex
	w         io.Writer
	label     string
	state     spinnerState
	frame     int
	startTime time.Time
	stopChan  chan struct{}
	doneChan  chan struct{}
	running   bool
	lastWidth int
}

// NewSpinner creates a spinner that draws to w.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{
		w:     w,
		label: label,
		state: spinnerPending,
	}
}

// Start begins the animation. Calling it twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.state = spinnerInProgress
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

// Success stops the spinner and prints a success line.
func (s *Spinner) Success() {
	s.finish(spinnerSuccess)
}

// Fail stops the spinner and prints a failure line.
func (s *Spinner) Fail() {
	s.finish(spinnerFailed)
}

func (s *Spinner) finish(state spinnerState) {
	s.Stop()
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.renderFinal()
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()
	defer close(s.doneChan)

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.mu.Unlock()
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	style := lipgloss.NewStyle().Foreground(GradientColors[(s.frame/2)%len(GradientColors)])
	line := fmt.Sprintf("%s %s...", style.Render(spinnerFrames[s.frame]), s.label)
	s.clear()
	fmt.Fprint(s.w, "\r"+line)
	s.lastWidth = lipgloss.Width(line)
}

func (s *Spinner) renderFinal() {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol, style := SymbolPending, MutedStyle()
	switch s.state {
	case spinnerSuccess:
		symbol, style = SymbolComplete, SuccessStyle()
	case spinnerFailed:
		symbol, style = SymbolFail, ErrorStyle()
	}

	s.clear()
	fmt.Fprintf(s.w, "%s %s %s\n",
		style.Render(symbol),
		s.label,
		MutedStyle().Render(formatDuration(time.Since(s.startTime))),
	)
	s.lastWidth = 0
}

// clear blanks the previously drawn line. Caller holds mu.
func (s *Spinner) clear() {
	if s.lastWidth > 0 {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.lastWidth)+"\r")
	}
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
