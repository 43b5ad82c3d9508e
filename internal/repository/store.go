package repository

import (
	"context"
	"errors"

	"github.com/IBosman/zeeder-sub000/internal/model"
)

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint would be violated
	ErrDuplicate = errors.New("duplicate record")
	// ErrNoOtherCompany is returned when no company other than the excluded one exists
	ErrNoOtherCompany = errors.New("no other company exists")
)

// Store is the tenant directory: users, companies, agents, voices and their relations
type Store interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListUsersByCompany(ctx context.Context, companyID uint) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	SetUserCompany(ctx context.Context, userID uint, companyID *uint) error
	DeleteUser(ctx context.Context, id uint) error

	CreateCompany(ctx context.Context, company *model.Company) error
	GetCompany(ctx context.Context, id uint) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]model.Company, error)
	UpdateCompany(ctx context.Context, company *model.Company) error
	// DeleteCompany removes the company, detaches its users and agents and drops its voice grants
	DeleteCompany(ctx context.Context, id uint) error
	// FindOtherCompany returns the lowest-id company whose id is not excludeID
	FindOtherCompany(ctx context.Context, excludeID uint) (*model.Company, error)

	CreateAgent(ctx context.Context, agent *model.Agent) error
	GetAgent(ctx context.Context, id uint) (*model.Agent, error)
	GetAgentByExternalID(ctx context.Context, externalID string) (*model.Agent, error)
	ListAgents(ctx context.Context) ([]model.Agent, error)
	ListAgentsByCompany(ctx context.Context, companyID uint) ([]model.Agent, error)
	UpdateAgent(ctx context.Context, agent *model.Agent) error
	SetAgentCompany(ctx context.Context, agentID uint, companyID *uint) error
	DeleteAgent(ctx context.Context, id uint) error

	CreateVoice(ctx context.Context, voice *model.Voice) error
	GetVoice(ctx context.Context, voiceID string) (*model.Voice, error)
	ListVoices(ctx context.Context) ([]model.Voice, error)
	ListVoicesByCompany(ctx context.Context, companyID uint) ([]model.Voice, error)
	// ReplaceVoices atomically swaps the whole catalog for voices and prunes
	// company grants that point at voices no longer present
	ReplaceVoices(ctx context.Context, voices []model.Voice) error

	CreateCompanyVoice(ctx context.Context, cv *model.CompanyVoice) error
	DeleteCompanyVoice(ctx context.Context, companyID uint, voiceID string) error
}

// dedupeVoices keeps the last occurrence of every voice ID, preserving first-seen order
func dedupeVoices(voices []model.Voice) []model.Voice {
	index := make(map[string]int, len(voices))
	out := make([]model.Voice, 0, len(voices))
	for _, v := range voices {
		if i, ok := index[v.VoiceID]; ok {
			out[i] = v
			continue
		}
		index[v.VoiceID] = len(out)
		out = append(out, v)
	}
	return out
}
