package terminal

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Phase identifies a step of the generation pipeline.
type Phase int

const (
	PhaseDesigning Phase = iota
	PhaseTheming
	PhaseMechanics
	PhaseAssets
	PhaseValidating
	PhaseFallback
)

func (p Phase) label() string {
	switch p {
	case PhaseDesigning:
		return "Designing"
	case PhaseTheming:
		return "Theming"
	case PhaseMechanics:
		return "Building mechanics"
	case PhaseAssets:
		return "Generating assets"
	case PhaseValidating:
		return "Validating"
	case PhaseFallback:
		return "Assembling fallback"
	default:
		return "Working"
	}
}

// activity represents a single logged action.
type activity struct {
	text string
}

const maxActivities = 4

// ProgressDisplay renders the attempt loop: which attempt is running, which
// phase it is in, and a short tail of recent activity.
type ProgressDisplay struct {
	mu          sync.Mutex
	phase       Phase
	attempt     int
	maxAttempts int
	activities  []activity
	statusText  string
	running     bool
	done        chan struct{}
	startedAt   time.Time
	interactive bool
}

// NewProgressDisplay creates a display for a run of up to maxAttempts.
func NewProgressDisplay(maxAttempts int) *ProgressDisplay {
	return &ProgressDisplay{
		phase:       PhaseDesigning,
		attempt:     1,
		maxAttempts: maxAttempts,
		startedAt:   time.Now(),
		interactive: term.IsTerminal(int(os.Stdout.Fd())),
		done:        make(chan struct{}),
	}
}

// Start begins the rendering loop.
func (pd *ProgressDisplay) Start() {
	pd.mu.Lock()
	if pd.running {
		pd.mu.Unlock()
		return
	}
	pd.running = true
	pd.mu.Unlock()

	if pd.interactive {
		go pd.renderLoop()
	}
}

// Stop halts rendering and clears the display.
func (pd *ProgressDisplay) Stop() {
	pd.mu.Lock()
	if !pd.running {
		pd.mu.Unlock()
		return
	}
	pd.running = false
	pd.mu.Unlock()

	close(pd.done)
	if pd.interactive {
		fmt.Printf("\r%s\r", strings.Repeat(" ", 100))
	}
}

// StopWithSuccess stops the display and prints a success line.
func (pd *ProgressDisplay) StopWithSuccess(msg string) {
	pd.Stop()
	Success(msg)
}

// StopWithError stops the display and prints an error line.
func (pd *ProgressDisplay) StopWithError(msg string) {
	pd.Stop()
	Error(msg)
}

// SetPhase switches the displayed phase.
func (pd *ProgressDisplay) SetPhase(phase Phase) {
	pd.mu.Lock()
	pd.phase = phase
	pd.mu.Unlock()
	pd.renderOnce()
}

// SetAttempt updates the attempt counter and resets per-attempt state.
func (pd *ProgressDisplay) SetAttempt(n int) {
	pd.mu.Lock()
	pd.attempt = n
	pd.phase = PhaseTheming
	pd.activities = nil
	pd.statusText = ""
	pd.mu.Unlock()
	pd.renderOnce()
}

// AddActivity appends a short activity line.
func (pd *ProgressDisplay) AddActivity(text string) {
	pd.mu.Lock()
	pd.activities = append(pd.activities, activity{text: truncateActivity(text)})
	if len(pd.activities) > maxActivities {
		pd.activities = pd.activities[len(pd.activities)-maxActivities:]
	}
	pd.mu.Unlock()
	pd.renderOnce()
}

// SetStatus sets the dimmed status line under the header.
func (pd *ProgressDisplay) SetStatus(text string) {
	pd.mu.Lock()
	pd.statusText = truncateActivity(text)
	pd.mu.Unlock()
	pd.renderOnce()
}

func (pd *ProgressDisplay) renderLoop() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	frame := 0
	for {
		select {
		case <-pd.done:
			return
		case <-ticker.C:
			pd.render(frame)
			frame++
		}
	}
}

// renderOnce prints a plain line in non-interactive mode; interactive mode
// picks state changes up on the next tick.
func (pd *ProgressDisplay) renderOnce() {
	if pd.interactive {
		return
	}
	pd.mu.Lock()
	defer pd.mu.Unlock()
	if !pd.running {
		return
	}
	fmt.Printf("[attempt %d/%d] %s", pd.attempt, pd.maxAttempts, pd.phase.label())
	if pd.statusText != "" {
		fmt.Printf(" — %s", pd.statusText)
	}
	fmt.Println()
}

func (pd *ProgressDisplay) render(frame int) {
	pd.mu.Lock()
	defer pd.mu.Unlock()
	if !pd.running {
		return
	}

	spin := spinnerFrames[frame%len(spinnerFrames)]
	header := buildHeader(pd.attempt, pd.maxAttempts, pd.phase, spin, time.Since(pd.startedAt))
	line := header
	if pd.statusText != "" {
		line += "  " + Dim + pd.statusText + Reset
	}
	fmt.Printf("\r%s\033[K", line)
}

func buildHeader(attempt, maxAttempts int, phase Phase, spinChar string, elapsed time.Duration) string {
	return fmt.Sprintf("%s%s%s %s%s%s %s[attempt %d/%d]%s %s(%s)%s",
		Cyan, spinChar, Reset,
		Bold, phase.label(), Reset,
		Dim, attempt, maxAttempts, Reset,
		Dim, formatElapsed(elapsed), Reset)
}

func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
}

func truncateActivity(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	const max = 70
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
