package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/intakehq/intake/engine/dedupe"
	"github.com/intakehq/intake/engine/extractor"
	"github.com/intakehq/intake/engine/infra/store"
	"github.com/intakehq/intake/engine/ingest"
	"github.com/intakehq/intake/engine/resolver"
	"github.com/intakehq/intake/engine/tracker"
	"github.com/intakehq/intake/engine/transcript"
	"github.com/intakehq/intake/pkg/config"
	"github.com/intakehq/intake/pkg/logger"
)

// app wires the collaborators a command needs. Every client is constructed
// explicitly here so commands and tests never reach for globals.
type app struct {
	cfg       *config.Config
	db        *store.DB
	entities  *store.EntityRepo
	recentOps *store.RecentOpsRepo
	tracker   *tracker.Client
	extractor *extractor.LLM
}

// setupContext attaches a configured logger to the command context.
func setupContext(ctx context.Context, cfg *config.Config) context.Context {
	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.LogLevel(cfg.Log.Level)
	logCfg.JSON = cfg.Log.JSON
	return logger.ContextWithLogger(ctx, logger.NewLogger(logCfg))
}

// newApp loads configuration and connects every external collaborator.
func newApp(ctx context.Context) (*app, context.Context, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, ctx, err
	}
	ctx = setupContext(ctx, cfg)

	dbCfg := &store.Config{
		ConnString: cfg.Database.ConnString,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		DBName:     cfg.Database.Name,
		SSLMode:    cfg.Database.SSLMode,
	}
	if cfg.Database.AutoMigrate {
		if err := store.ApplyMigrations(ctx, dbCfg.DSN()); err != nil {
			return nil, ctx, err
		}
	}
	db, err := store.NewDB(ctx, dbCfg)
	if err != nil {
		return nil, ctx, err
	}

	trackerClient, err := tracker.NewClient(&tracker.Config{
		BaseURL: cfg.Tracker.BaseURL,
		Token:   cfg.Tracker.Token,
		Timeout: cfg.Tracker.Timeout,
	})
	if err != nil {
		db.Close(ctx)
		return nil, ctx, err
	}

	model, err := openai.New(
		openai.WithModel(cfg.LLM.Model),
		openai.WithToken(cfg.LLM.APIKey),
	)
	if err != nil {
		db.Close(ctx)
		return nil, ctx, fmt.Errorf("building extraction model: %w", err)
	}

	return &app{
		cfg:       cfg,
		db:        db,
		entities:  store.NewEntityRepo(db),
		recentOps: store.NewRecentOpsRepo(db),
		tracker:   trackerClient,
		extractor: extractor.NewLLM(model),
	}, ctx, nil
}

func (a *app) close(ctx context.Context) {
	a.db.Close(ctx)
}

func (a *app) orchestrator() *ingest.Orchestrator {
	return ingest.NewOrchestrator(
		a.extractor,
		resolver.NewService(a.entities),
		dedupe.NewGuard(a.recentOps),
		a.tracker,
	)
}

func (a *app) pipeline() *transcript.Pipeline {
	sections := resolver.NewSectionResolver(a.entities, a.tracker, a.cfg.Resolver.AllowSectionCreation)
	return transcript.NewPipeline(a.extractor, a.tracker, sections)
}

// printJSON writes v to stdout for machine consumption.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
