// Package service wires configuration, the Claude client, the generation
// collaborators, and the stores into the operations the CLI and MCP server
// expose.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/forgelabs/gameforge/internal/claude"
	"github.com/forgelabs/gameforge/internal/config"
	"github.com/forgelabs/gameforge/internal/generation"
	"github.com/forgelabs/gameforge/internal/orchestrator"
	"github.com/forgelabs/gameforge/internal/pricing"
	"github.com/forgelabs/gameforge/internal/quality"
	"github.com/forgelabs/gameforge/internal/report"
	"github.com/forgelabs/gameforge/internal/secrets"
	"github.com/forgelabs/gameforge/internal/spec"
	"github.com/forgelabs/gameforge/internal/storage"
	"github.com/forgelabs/gameforge/internal/terminal"
)

// Service coordinates game generation for CLI usage.
type Service struct {
	config     *config.Config
	claude     *claude.Client
	usageStore *storage.UsageStore
	model      string // user-selected model override (empty = settings default)
}

// ServiceOpts holds optional configuration for the service.
type ServiceOpts struct {
	Model string // Claude model override (sonnet, opus, haiku)
}

// NewService creates a new service.
func NewService(cfg *config.Config, opts ...ServiceOpts) (*Service, error) {
	var model string
	if len(opts) > 0 && opts[0].Model != "" {
		model = opts[0].Model
	}

	return &Service{
		config:     cfg,
		claude:     claude.NewClient(cfg.ClaudePath),
		usageStore: storage.NewUsageStore(filepath.Join(cfg.Root, ".gameforge")),
		model:      model,
	}, nil
}

// CurrentModel returns the mapped model name in effect.
func (s *Service) CurrentModel() string {
	m := s.model
	if m == "" {
		m = s.config.Settings.Model
	}
	return claude.MapModelName(m)
}

// Usage returns the current session usage stats.
func (s *Service) Usage() *storage.SessionUsage {
	return s.usageStore.Current()
}

// UsageHistory returns daily usage, most recent first.
func (s *Service) UsageHistory(days int) []storage.DailyUsage {
	return s.usageStore.History(days)
}

// GenerateOptions control one generation run. Zero values fall back to the
// gameforge.yaml settings.
type GenerateOptions struct {
	SpecPath        string   // design spec file; empty = ask Claude for a design
	Hints           []string // design hints when generating the spec
	MaxRetries      int
	MinQualityScore int
	CostBudget      float64
	NoFallback      bool
	Progress        bool // drive the terminal progress display
}

// Generate runs the full pipeline: obtain a design, generate the project
// under the catalog, validate, retry, and persist the outcome.
func (s *Service) Generate(ctx context.Context, opts GenerateOptions) (*orchestrator.GenerationResult, error) {
	meter := &generation.UsageMeter{}
	backend := generation.MeteredBackend{Backend: s.claude, Meter: meter}

	design, err := s.resolveDesign(ctx, backend, opts)
	if err != nil {
		return nil, err
	}

	projectDir := uniqueProjectDir(s.config.CatalogRoot(), design.ID)
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating project dir: %w", err)
	}

	gameStore := storage.NewGameStore(projectDir)
	if _, err := gameStore.Create(design.ID, design.Name, design.Genre, projectDir); err != nil {
		return nil, err
	}

	runCfg := s.runConfig(opts, projectDir)

	var pd *terminal.ProgressDisplay
	if opts.Progress {
		pd = terminal.NewProgressDisplay(runCfg.MaxRetries)
		pd.Start()
		defer pd.Stop()
	}

	orch := s.buildOrchestrator(backend, projectDir, pd)
	res, err := orch.Run(ctx, *design, runCfg)
	if err != nil {
		if res == nil {
			return nil, err
		}
		// Fallback assembly failures still carry a result worth recording.
		s.record(res, gameStore, meter)
		return res, err
	}

	s.record(res, gameStore, meter)
	return res, nil
}

// Validate scores an existing project directory without generating anything.
func (s *Service) Validate(ctx context.Context, projectDir string) quality.Score {
	return s.buildValidator(projectDir).Validate(ctx, projectDir)
}

// SummarizeRuns aggregates every persisted run and writes the summary in
// the requested format.
func (s *Service) SummarizeRuns(format string, w io.Writer) error {
	store, err := storage.OpenRunStore(s.config.RunDBPath())
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListRuns()
	if err != nil {
		return err
	}
	results := make([]*orchestrator.GenerationResult, 0, len(records))
	for _, rec := range records {
		results = append(results, rec.Result)
	}
	return report.Write(report.Summarize(results), format, w)
}

// Info prints the catalog and environment status.
func (s *Service) Info() error {
	terminal.Header("Environment")
	version := config.ClaudeVersion(s.config.ClaudePath)
	auth := config.CheckClaudeAuth(s.config.ClaudePath)
	opts := terminal.ToolStatusOpts{ClaudeVersion: version}
	if auth != nil {
		opts.AuthLoggedIn = auth.LoggedIn
		opts.AuthEmail = auth.Email
		opts.AuthPlan = auth.SubscriptionType
	}
	terminal.ToolStatus(opts)

	games := s.config.ListGames()
	terminal.Header(fmt.Sprintf("Games (%d)", len(games)))
	for _, g := range games {
		store := storage.NewGameStore(g.Path)
		entry, err := store.Load()
		if err != nil || entry == nil {
			terminal.Detail(g.Name, "no metadata")
			continue
		}
		terminal.Detail(entry.Name, fmt.Sprintf("%s, %s, score %d", entry.Genre, entry.Status, entry.Score))
	}
	if len(games) == 0 {
		terminal.Info("No games yet. Run `gameforge generate` to create one.")
	}
	return nil
}

// resolveDesign loads the design from a file or asks Claude for a new one.
func (s *Service) resolveDesign(ctx context.Context, backend generation.Backend, opts GenerateOptions) (*spec.DesignSpec, error) {
	if opts.SpecPath != "" {
		return spec.LoadFile(opts.SpecPath)
	}

	gen := generation.NewClaudeSpecGenerator(backend, s.CurrentModel())
	return gen.GenerateDesignSpec(ctx, s.priorDesigns(), opts.Hints)
}

// priorDesigns summarizes existing catalog entries so new designs differ
// from them.
func (s *Service) priorDesigns() []spec.DesignSpec {
	var prior []spec.DesignSpec
	for _, g := range s.config.ListGames() {
		entry, err := storage.NewGameStore(g.Path).Load()
		if err != nil || entry == nil {
			continue
		}
		prior = append(prior, spec.DesignSpec{ID: entry.SpecID, Name: entry.Name, Genre: entry.Genre})
	}
	return prior
}

func (s *Service) runConfig(opts GenerateOptions, projectDir string) orchestrator.RunConfig {
	run := s.config.Settings.Run
	cfg := orchestrator.RunConfig{
		MaxRetries:      run.MaxRetries,
		MinQualityScore: run.MinQualityScore,
		CostBudget:      run.CostBudget,
		EnableFallback:  run.EnableFallback && !opts.NoFallback,
		ProjectDir:      projectDir,
	}
	if opts.MaxRetries > 0 {
		cfg.MaxRetries = opts.MaxRetries
	}
	if opts.MinQualityScore > 0 {
		cfg.MinQualityScore = opts.MinQualityScore
	}
	if opts.CostBudget > 0 {
		cfg.CostBudget = opts.CostBudget
	}
	return cfg
}

func (s *Service) buildOrchestrator(backend generation.Backend, projectDir string, pd *terminal.ProgressDisplay) *orchestrator.Orchestrator {
	model := s.CurrentModel()
	theme := generation.NewClaudeThemeGenerator(backend, model)
	mechanics := generation.NewClaudeMechanicsGenerator(backend, model)
	assets := generation.NewStudioAssetGenerator(s.assetProvider())
	validator := s.buildValidator(projectDir)

	orch := orchestrator.New(theme, mechanics, assets, validator)
	if table, err := s.costTable(); err == nil {
		orch.Costs = table
	}
	if pd != nil {
		orch.Theme = themeWithProgress{theme, pd}
		orch.Mechanics = mechanicsWithProgress{mechanics, pd}
		orch.Assets = assetsWithProgress{assets, pd}
		orch.Validator = validatorWithProgress{validator, pd}
	}
	return orch
}

func (s *Service) buildValidator(projectDir string) *quality.Aggregator {
	q := s.config.Settings.Quality
	code := quality.NewCodeProber(quality.CodeProberConfig{
		BuildCmd: q.BuildCmd,
		TestCmd:  q.TestCmd,
		LintCmd:  q.LintCmd,
	})
	gameplay := quality.NewGameplayProber(
		quality.HarnessLauncher{Cmd: q.HarnessCmd},
		quality.FilePerfMonitor{Dir: projectDir},
		quality.GameplayProberConfig{},
	)
	visual := quality.NewVisualProber(quality.FileFrameRate{})
	return quality.NewAggregator(code, gameplay, visual, quality.AggregatorConfig{
		Thresholds:      q.Thresholds,
		DisableCode:     q.DisableCode,
		DisableGameplay: q.DisableGameplay || q.HarnessCmd == "",
		DisableVisual:   q.DisableVisual,
	})
}

// assetProvider returns the configured image provider, or nil when no
// endpoint is set (placeholders only).
func (s *Service) assetProvider() generation.AssetProvider {
	a := s.config.Settings.Assets
	if a.Endpoint == "" {
		return nil
	}
	provider := a.Provider
	if provider == "" {
		provider = "imagestudio"
	}
	store := secrets.New(filepath.Join(s.config.Root, ".gameforge"))
	apiKey, err := store.Get(secrets.SecretKey(provider, "api_key"))
	if err != nil {
		apiKey = ""
	}
	return generation.NewHTTPAssetProvider(a.Endpoint, apiKey)
}

func (s *Service) costTable() (pricing.Table, error) {
	if s.config.Settings.PricingFile == "" {
		return pricing.Default(), nil
	}
	return pricing.Load(s.config.Settings.PricingFile)
}

// record persists the run outcome and updates the catalog entry. Storage
// failures are reported but never mask the run result.
func (s *Service) record(res *orchestrator.GenerationResult, gameStore *storage.GameStore, meter *generation.UsageMeter) {
	if store, err := storage.OpenRunStore(s.config.RunDBPath()); err == nil {
		if err := store.PersistRun(res); err != nil {
			terminal.Warning(fmt.Sprintf("could not persist run: %v", err))
		}
		store.Close()
	} else {
		terminal.Warning(fmt.Sprintf("could not open run store: %v", err))
	}

	costUSD, inputTokens, outputTokens := meter.Totals()
	s.usageStore.RecordRun(res.TotalCostUnits, costUSD, inputTokens, outputTokens)

	status := storage.GameStatusFailed
	switch {
	case res.FallbackUsed:
		status = storage.GameStatusFallback
	case res.Success:
		status = storage.GameStatusReady
	}
	score := res.BestScore()
	if score < 0 {
		score = 0
	}
	if _, err := gameStore.UpdateStatus(status, score); err != nil {
		terminal.Warning(fmt.Sprintf("could not update catalog entry: %v", err))
	}
}

// uniqueProjectDir returns a project directory path that does not already
// exist. If <catalogDir>/<id> is free it is returned as-is, otherwise a
// counter is appended: <id>2, <id>3, …
func uniqueProjectDir(catalogDir, id string) string {
	candidate := filepath.Join(catalogDir, id)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate
	}
	for n := 2; n <= 999; n++ {
		candidate = filepath.Join(catalogDir, fmt.Sprintf("%s%d", id, n))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
	return candidate
}
