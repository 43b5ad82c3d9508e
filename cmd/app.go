package main

import (
	"context"
	"fmt"

	"github.com/IBosman/zeeder-sub000/internal/agent"
	"github.com/IBosman/zeeder-sub000/internal/auth"
	"github.com/IBosman/zeeder-sub000/internal/handler"
	"github.com/IBosman/zeeder-sub000/internal/repository"
	"github.com/IBosman/zeeder-sub000/internal/service"
	"github.com/IBosman/zeeder-sub000/internal/tenant"
	"github.com/IBosman/zeeder-sub000/pkg/config"
	"github.com/IBosman/zeeder-sub000/pkg/database"
	"github.com/IBosman/zeeder-sub000/pkg/elevenlabs"
	"github.com/IBosman/zeeder-sub000/pkg/jwtutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the strategies selected once at startup
type app struct {
	cfg      *config.Config
	db       *gorm.DB
	store    repository.Store
	provider auth.Provider
	backend  agent.Backend

	directory   *service.Directory
	assignments *service.Assignments
	voices      *service.VoiceCatalog
	agents      *service.Agents
}

// newApp wires the store, auth provider and agent backend. Demo mode runs
// entirely in memory; otherwise Postgres, JWT and the ElevenLabs API are used.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg}

	if cfg.DemoMode {
		store := repository.NewMemoryStore()
		backend := agent.NewDemoBackend()
		identity, err := service.SeedDemo(ctx, store, backend)
		if err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
		a.store = store
		a.backend = backend
		a.provider = auth.NewDemoProvider(identity)
		log.Warn("Demo mode enabled: authentication is bypassed and data is kept in memory")
	} else {
		db, err := database.Open(&cfg.DB, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		a.db = db
		a.store = repository.NewGormStore(db)
		a.backend = newElevenLabsClient(cfg, log)
		a.provider = auth.NewJWTProvider(jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
			SigningKey:      cfg.JWT.SigningKey,
			ExpirationHours: cfg.JWT.ExpirationHours,
		}))
	}

	resolver := tenant.NewResolver(a.store)
	a.directory = service.NewDirectory(a.store, a.provider)
	a.assignments = service.NewAssignments(a.store, resolver, cfg.AgentRemovalPolicy)
	a.voices = service.NewVoiceCatalog(a.store, a.backend)
	a.agents = service.NewAgents(a.store, a.backend, resolver)
	return a, nil
}

func newElevenLabsClient(cfg *config.Config, log *zap.Logger) *elevenlabs.Client {
	if cfg.ElevenLabs.APIKey == "" {
		log.Warn("ELEVENLABS_API_KEY is not set, agent and voice calls will be rejected upstream")
	}
	return elevenlabs.NewClient(cfg.ElevenLabs.BaseURL, cfg.ElevenLabs.APIKey, cfg.ElevenLabs.Timeout,
		log.Named("elevenlabs"))
}

func (a *app) handler() *handler.Handler {
	return handler.New(a.directory, a.assignments, a.voices, a.agents, a.cfg.DemoMode)
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	return database.Close(a.db)
}
