package cmd

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/config"
	"github.com/elyxhealth/careteam/internal/conversation"
	"github.com/elyxhealth/careteam/internal/db"
	"github.com/elyxhealth/careteam/internal/extract"
	"github.com/elyxhealth/careteam/internal/issues"
	"github.com/elyxhealth/careteam/internal/journey"
	"github.com/elyxhealth/careteam/internal/llm"
	"github.com/elyxhealth/careteam/internal/respond"
	"github.com/elyxhealth/careteam/internal/router"
	"github.com/elyxhealth/careteam/internal/travel"
)

// app bundles the wired dependency graph behind every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	database *db.DB
	pipeline *conversation.Pipeline
	issues   *issues.Store
	machine  *journey.Machine
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// buildApp loads configuration and wires the full pipeline. All logging goes
// to stderr so stdio surfaces (MCP) stay clean.
func buildApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "careteam.db"))
	if err != nil {
		return nil, err
	}

	provider := llm.NewProvider(cfg, logger)
	responder := respond.New(provider, cfg.LLM.Model, cfg.LLM.Temperature, logger)
	rt := router.New(extract.New(provider, cfg.LLM.Model, logger), cfg.MaxAgents, logger)
	store := issues.NewStore(database, logger)

	log, err := conversation.NewLog(database)
	if err != nil {
		database.Close()
		return nil, err
	}
	travelEx, err := travel.NewExtractor(responder, logger)
	if err != nil {
		database.Close()
		return nil, err
	}
	pipeline := conversation.NewPipeline(log, rt, responder, store, travelEx, logger)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	machine, err := journey.NewMachine(pipeline, journey.NewStore(database),
		cfg.MemberName, cfg.TotalWeeks, cfg.AdherenceThreshold,
		rand.New(rand.NewSource(seed)), logger)
	if err != nil {
		database.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		database: database,
		pipeline: pipeline,
		issues:   store,
		machine:  machine,
	}, nil
}

func (a *app) Close() {
	_ = a.logger.Sync()
	_ = a.database.Close()
}
