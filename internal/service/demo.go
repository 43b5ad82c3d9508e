package service

import (
	"context"

	"github.com/IBosman/zeeder-sub000/internal/agent"
	"github.com/IBosman/zeeder-sub000/internal/auth"
	"github.com/IBosman/zeeder-sub000/internal/model"
	"github.com/IBosman/zeeder-sub000/internal/repository"
	"github.com/google/uuid"
)

// SeedDemo fills an empty store with a demo company, a demo admin and the
// backend's canned agents and voices. It returns the identity demo requests run as.
func SeedDemo(ctx context.Context, store repository.Store, backend *agent.DemoBackend) (auth.Identity, error) {
	company := &model.Company{Name: "Demo Company", Active: true}
	if err := store.CreateCompany(ctx, company); err != nil {
		return auth.Identity{}, err
	}

	hash, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return auth.Identity{}, err
	}
	user := &model.User{
		Username:     "demo",
		Email:        "demo@example.com",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CompanyID:    &company.ID,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return auth.Identity{}, err
	}

	for _, seed := range agent.DemoAgents {
		if err := store.CreateAgent(ctx, &model.Agent{
			ElevenLabsAgentID: seed.ID,
			Name:              seed.Name,
			CompanyID:         &company.ID,
			CreatedBy:         &user.ID,
		}); err != nil {
			return auth.Identity{}, err
		}
	}

	if _, err := NewVoiceCatalog(store, backend).Sync(ctx); err != nil {
		return auth.Identity{}, err
	}
	voices, err := store.ListVoices(ctx)
	if err != nil {
		return auth.Identity{}, err
	}
	for _, v := range voices {
		if err := store.CreateCompanyVoice(ctx, &model.CompanyVoice{CompanyID: company.ID, VoiceID: v.VoiceID}); err != nil {
			return auth.Identity{}, err
		}
	}

	return auth.IdentityOf(user), nil
}
