package quality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// HarnessLauncher boots a game through an external harness command run via
// `sh -c` in the project directory. The harness reads one input gesture per
// line on stdin and records its observations as project artifacts:
// state.json for reachability and perf.json for frame timings.
type HarnessLauncher struct {
	Cmd string
}

// Launch implements Launcher.
func (l HarnessLauncher) Launch(ctx context.Context, projectDir string) (Instance, error) {
	if l.Cmd == "" {
		return nil, errors.New("no gameplay harness configured")
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", l.Cmd)
	cmd.Dir = projectDir
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("opening harness stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting harness: %w", err)
	}

	inst := &harnessInstance{
		cmd:   cmd,
		stdin: stdin,
		dir:   projectDir,
		dead:  make(chan struct{}),
	}
	go func() {
		cmd.Wait()
		close(inst.dead)
	}()
	return inst, nil
}

type harnessInstance struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	dir   string
	dead  chan struct{}
}

// SendInput writes one gesture line to the harness. A harness that has
// exited reads as a crash.
func (h *harnessInstance) SendInput(_ context.Context, kind InputKind) error {
	select {
	case <-h.dead:
		return ErrCrashed
	default:
	}
	if _, err := io.WriteString(h.stdin, string(kind)+"\n"); err != nil {
		return ErrCrashed
	}
	return nil
}

// State reads the reachability observations the harness recorded in
// state.json.
func (h *harnessInstance) State(_ context.Context) (GameState, error) {
	data, err := os.ReadFile(filepath.Join(h.dir, "state.json"))
	if err != nil {
		return GameState{}, fmt.Errorf("reading state report: %w", err)
	}
	var report struct {
		WinReachable       bool `json:"win_reachable"`
		LoseReachable      bool `json:"lose_reachable"`
		ScoreAccumulates   bool `json:"score_accumulates"`
		ControlsResponsive bool `json:"controls_responsive"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return GameState{}, fmt.Errorf("parsing state report: %w", err)
	}
	return GameState{
		WinReachable:       report.WinReachable,
		LoseReachable:      report.LoseReachable,
		ScoreAccumulates:   report.ScoreAccumulates,
		ControlsResponsive: report.ControlsResponsive,
	}, nil
}

// Close ends the input stream and waits briefly for the harness to exit,
// killing it if it lingers.
func (h *harnessInstance) Close() error {
	h.stdin.Close()
	select {
	case <-h.dead:
	case <-time.After(2 * time.Second):
		h.cmd.Process.Kill()
		<-h.dead
	}
	return nil
}

// FilePerfMonitor reads frame timings from <projectDir>/perf.json, written
// by the harness during the probe.
type FilePerfMonitor struct {
	Dir string
}

// Measure implements PerfMonitor.
func (m FilePerfMonitor) Measure(_ context.Context, _ Instance) (PerfSample, error) {
	data, err := os.ReadFile(filepath.Join(m.Dir, "perf.json"))
	if err != nil {
		return PerfSample{}, fmt.Errorf("reading perf report: %w", err)
	}
	var report struct {
		FPS           float64 `json:"fps"`
		DroppedFrames int     `json:"dropped_frames"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return PerfSample{}, fmt.Errorf("parsing perf report: %w", err)
	}
	return PerfSample{FPS: report.FPS, DroppedFrames: report.DroppedFrames}, nil
}
