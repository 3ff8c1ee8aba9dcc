package quality

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// InputKind is one synthetic input gesture.
type InputKind string

// The default input alphabet, chosen uniformly at random during a probe.
const (
	InputTap        InputKind = "tap"
	InputSwipeUp    InputKind = "swipe_up"
	InputSwipeDown  InputKind = "swipe_down"
	InputSwipeLeft  InputKind = "swipe_left"
	InputSwipeRight InputKind = "swipe_right"
	InputLongPress  InputKind = "long_press"
	InputDoubleTap  InputKind = "double_tap"
)

var defaultInputAlphabet = []InputKind{
	InputTap,
	InputSwipeUp, InputSwipeDown, InputSwipeLeft, InputSwipeRight,
	InputLongPress, InputDoubleTap,
}

// ErrCrashed is returned by Instance.SendInput when the game process died.
var ErrCrashed = errors.New("game instance crashed")

// GameState holds the post-probe reachability observations.
type GameState struct {
	WinReachable       bool
	LoseReachable      bool
	ScoreAccumulates   bool
	ControlsResponsive bool
}

// Instance is a launched game under probe.
type Instance interface {
	SendInput(ctx context.Context, kind InputKind) error
	State(ctx context.Context) (GameState, error)
	Close() error
}

// Launcher boots a generated game so it can be probed. How launching is
// physically performed (simulator, device farm, headless runtime) is the
// implementation's concern.
type Launcher interface {
	Launch(ctx context.Context, projectDir string) (Instance, error)
}

// PerfMonitor samples rendering performance of a running instance.
type PerfMonitor interface {
	Measure(ctx context.Context, inst Instance) (PerfSample, error)
}

// PerfSample is one performance measurement.
type PerfSample struct {
	FPS           float64
	DroppedFrames int
}

// Point split for the gameplay dimension.
const (
	stabilityPoints    = 30
	crashPenalty       = 10
	reachabilityPoints = 10 // x4 checks
	fpsPoints          = 20
	frameDropPoints    = 10
)

// GameplayProberConfig bounds the synthetic input probe.
type GameplayProberConfig struct {
	InputCount  int           `yaml:"input_count"`  // default 100
	InputDelay  time.Duration `yaml:"input_delay"`  // sleep between inputs
	MaxDuration time.Duration `yaml:"max_duration"` // hard cap, default 60s
	MinFPS      float64       `yaml:"min_fps"`      // FPS threshold, default 30
	Seed        int64         `yaml:"-"`            // 0 = time-seeded
}

func (c GameplayProberConfig) withDefaults() GameplayProberConfig {
	if c.InputCount <= 0 {
		c.InputCount = 100
	}
	if c.InputDelay <= 0 {
		c.InputDelay = 10 * time.Millisecond
	}
	if c.MaxDuration <= 0 {
		c.MaxDuration = 60 * time.Second
	}
	if c.MinFPS <= 0 {
		c.MinFPS = 30
	}
	return c
}

// GameplayProber drives a generated game through synthetic input and scores
// stability, state reachability, and rendering performance.
type GameplayProber struct {
	launcher Launcher
	perf     PerfMonitor
	cfg      GameplayProberConfig
}

// NewGameplayProber creates a gameplay prober over the given capabilities.
func NewGameplayProber(launcher Launcher, perf PerfMonitor, cfg GameplayProberConfig) *GameplayProber {
	return &GameplayProber{launcher: launcher, perf: perf, cfg: cfg.withDefaults()}
}

// Probe launches the game, delivers the bounded input sequence, then takes
// the post-hoc reachability and performance readings. Any failure to launch
// or observe yields a zero score with stability=false rather than an error.
func (p *GameplayProber) Probe(ctx context.Context, projectDir string) GameplayScore {
	cfg := p.cfg

	// The probe must finish within MaxDuration regardless of input count.
	ctx, cancel := context.WithTimeout(ctx, cfg.MaxDuration)
	defer cancel()

	inst, err := p.launcher.Launch(ctx, projectDir)
	if err != nil {
		return failedGameplayScore(fmt.Sprintf("launch failed: %v", err))
	}
	defer inst.Close()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	details := GameplayDetails{Stability: true}

	for i := 0; i < cfg.InputCount; i++ {
		if ctx.Err() != nil {
			break // time budget exhausted; score what was collected
		}
		kind := defaultInputAlphabet[rng.Intn(len(defaultInputAlphabet))]
		if err := inst.SendInput(ctx, kind); err != nil {
			if errors.Is(err, ErrCrashed) {
				details.Crashes++
				break
			}
			details.Error = fmt.Sprintf("input delivery failed: %v", err)
			continue
		}
		details.InputsDelivered++

		select {
		case <-time.After(cfg.InputDelay):
		case <-ctx.Done():
		}
	}

	details.Stability = details.Crashes == 0

	state, err := inst.State(context.WithoutCancel(ctx))
	if err != nil {
		return failedGameplayScore(fmt.Sprintf("state observation failed: %v", err))
	}
	details.WinReachable = state.WinReachable
	details.LoseReachable = state.LoseReachable
	details.ScoreAccumulates = state.ScoreAccumulates
	details.ControlsResponsive = state.ControlsResponsive

	if p.perf != nil {
		if sample, err := p.perf.Measure(context.WithoutCancel(ctx), inst); err == nil {
			details.FPS = sample.FPS
			details.DroppedFrames = sample.DroppedFrames
		}
	}

	return GameplayScore{
		Score:   ClampScore(scoreGameplay(details, cfg.MinFPS)),
		Details: details,
	}
}

func scoreGameplay(d GameplayDetails, minFPS float64) int {
	score := 0

	// Stability: full credit only at zero crashes.
	stability := stabilityPoints - d.Crashes*crashPenalty
	if stability < 0 {
		stability = 0
	}
	score += stability

	for _, ok := range []bool{d.WinReachable, d.LoseReachable, d.ScoreAccumulates, d.ControlsResponsive} {
		if ok {
			score += reachabilityPoints
		}
	}

	if d.FPS >= minFPS {
		score += fpsPoints
	} else if d.FPS > 0 {
		score += int(fpsPoints * d.FPS / minFPS)
	}

	drops := frameDropPoints - d.DroppedFrames/10
	if drops < 0 {
		drops = 0
	}
	score += drops

	return score
}

func failedGameplayScore(reason string) GameplayScore {
	return GameplayScore{
		Score:   0,
		Details: GameplayDetails{Stability: false, Error: reason},
	}
}
