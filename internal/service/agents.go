package service

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/IBosman/zeeder-sub000/internal/agent"
	"github.com/IBosman/zeeder-sub000/internal/apperr"
	"github.com/IBosman/zeeder-sub000/internal/auth"
	"github.com/IBosman/zeeder-sub000/internal/model"
	"github.com/IBosman/zeeder-sub000/internal/repository"
	"github.com/IBosman/zeeder-sub000/internal/tenant"
	"github.com/IBosman/zeeder-sub000/pkg/elevenlabs"
	"github.com/IBosman/zeeder-sub000/pkg/logger"
	"go.uber.org/zap"
)

// Agents proxies agent configuration to the backend, scoped by tenant
type Agents struct {
	store    repository.Store
	backend  agent.Backend
	resolver *tenant.Resolver
}

// NewAgents creates the agent proxy service
func NewAgents(store repository.Store, backend agent.Backend, resolver *tenant.Resolver) *Agents {
	return &Agents{store: store, backend: backend, resolver: resolver}
}

// List returns the local agent records visible to identity. A user without
// a company sees an empty list.
func (s *Agents) List(ctx context.Context, identity auth.Identity) ([]model.Agent, error) {
	var (
		agents []model.Agent
		err    error
	)
	switch {
	case identity.IsAdmin():
		agents, err = s.store.ListAgents(ctx)
	case !identity.HasCompany():
		return []model.Agent{}, nil
	default:
		agents, err = s.store.ListAgentsByCompany(ctx, *identity.CompanyID)
	}
	if err != nil {
		return nil, apperr.Internal("failed to list agents", err)
	}
	if agents == nil {
		agents = []model.Agent{}
	}
	return agents, nil
}

// Get returns the flattened configuration of one agent
func (s *Agents) Get(ctx context.Context, identity auth.Identity, ref string) (*agent.Detail, error) {
	resolved, err := s.resolver.AuthorizeAgent(ctx, identity, ref)
	if err != nil {
		return nil, err
	}

	remote, err := s.backend.GetAgent(ctx, resolved.Agent.ElevenLabsAgentID)
	if err != nil {
		return nil, agent.UpstreamError(err)
	}
	detail := agent.Flatten(resolved.Agent, remote)
	return &detail, nil
}

// Update forwards the fields present in u and keeps the local name in sync
func (s *Agents) Update(ctx context.Context, identity auth.Identity, ref string, u agent.Update) (*agent.Detail, error) {
	if u.Empty() {
		return nil, apperr.BadRequest("no fields to update")
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, apperr.BadRequest("name cannot be empty")
		}
		u.Name = &name
	}

	resolved, err := s.resolver.AuthorizeAgent(ctx, identity, ref)
	if err != nil {
		return nil, err
	}
	local := resolved.Agent

	remote, err := s.backend.UpdateAgent(ctx, local.ElevenLabsAgentID, u.ToPatch())
	if err != nil {
		return nil, agent.UpstreamError(err)
	}

	if u.Name != nil && *u.Name != local.Name {
		local.Name = *u.Name
		if err := s.store.UpdateAgent(ctx, local); err != nil {
			return nil, storeErr(err, "agent not found", "", "failed to update agent")
		}
	}

	logger.Ctx(ctx).Info("Agent updated",
		zap.Uint("agent_id", local.ID),
		zap.String("external_id", local.ElevenLabsAgentID))

	detail := agent.Flatten(local, remote)
	return &detail, nil
}

// CreateAgentInput is a new agent together with its initial configuration
type CreateAgentInput struct {
	Name         string  `json:"name"`
	SystemPrompt *string `json:"systemPrompt"`
	FirstMessage *string `json:"firstMessage"`
	VoiceID      *string `json:"voiceId"`
	Language     *string `json:"language"`
	CompanyID    *uint   `json:"companyId"`
}

// Create registers an agent upstream and records the local tenancy pointer
func (s *Agents) Create(ctx context.Context, identity auth.Identity, in CreateAgentInput) (*agent.Detail, error) {
	log := logger.Ctx(ctx)

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.BadRequest("name is required")
	}

	var companyID *uint
	if in.CompanyID != nil && *in.CompanyID != 0 {
		if _, err := s.store.GetCompany(ctx, *in.CompanyID); err != nil {
			return nil, storeErr(err, "company not found", "", "failed to load company")
		}
		id := *in.CompanyID
		companyID = &id
	}

	config := agent.Update{
		Name:         &name,
		SystemPrompt: in.SystemPrompt,
		FirstMessage: in.FirstMessage,
		VoiceID:      in.VoiceID,
		Language:     in.Language,
	}.ToPatch()

	externalID, err := s.backend.CreateAgent(ctx, config)
	if err != nil {
		return nil, agent.UpstreamError(err)
	}

	createdBy := identity.UserID
	local := &model.Agent{
		ElevenLabsAgentID: externalID,
		Name:              name,
		CompanyID:         companyID,
		CreatedBy:         &createdBy,
	}
	if err := s.store.CreateAgent(ctx, local); err != nil {
		if delErr := s.backend.DeleteAgent(ctx, externalID); delErr != nil {
			log.Error("Failed to roll back upstream agent",
				zap.String("external_id", externalID),
				zap.Error(delErr))
		}
		return nil, storeErr(err, "", "agent already exists", "failed to create agent")
	}

	log.Info("Agent created",
		zap.Uint("agent_id", local.ID),
		zap.String("external_id", externalID),
		zap.Uint("created_by", createdBy))

	config.AgentID = externalID
	detail := agent.Flatten(local, config)
	return &detail, nil
}

// Delete removes an agent upstream and then locally. An agent already gone
// upstream is still removed locally.
func (s *Agents) Delete(ctx context.Context, identity auth.Identity, ref string) error {
	resolved, err := s.resolver.AuthorizeAgent(ctx, identity, ref)
	if err != nil {
		return err
	}
	local := resolved.Agent

	if err := s.backend.DeleteAgent(ctx, local.ElevenLabsAgentID); err != nil {
		if apperr.Status(agent.UpstreamError(err)) != http.StatusNotFound {
			return agent.UpstreamError(err)
		}
		logger.Ctx(ctx).Warn("Agent already missing upstream",
			zap.String("external_id", local.ElevenLabsAgentID))
	}

	if err := s.store.DeleteAgent(ctx, local.ID); err != nil {
		return storeErr(err, "agent not found", "", "failed to delete agent")
	}
	logger.Ctx(ctx).Info("Agent deleted", zap.Uint("agent_id", local.ID))
	return nil
}

// AddDocument uploads a file and attaches it to the agent's knowledge base
func (s *Agents) AddDocument(ctx context.Context, identity auth.Identity, ref, filename string, content io.Reader) (*elevenlabs.KnowledgeBaseDocument, error) {
	if filename == "" {
		return nil, apperr.BadRequest("file is required")
	}
	resolved, err := s.resolver.AuthorizeAgent(ctx, identity, ref)
	if err != nil {
		return nil, err
	}
	externalID := resolved.Agent.ElevenLabsAgentID

	doc, err := s.backend.UploadDocument(ctx, filename, content)
	if err != nil {
		return nil, agent.UpstreamError(err)
	}

	remote, err := s.backend.GetAgent(ctx, externalID)
	if err != nil {
		return nil, agent.UpstreamError(err)
	}

	entry := elevenlabs.KnowledgeBaseDocument{Type: "file", ID: doc.ID, Name: doc.Name}
	kb := append(agent.KnowledgeBase(remote), entry)
	if _, err := s.backend.UpdateAgent(ctx, externalID, agent.Update{KnowledgeBase: &kb}.ToPatch()); err != nil {
		return nil, agent.UpstreamError(err)
	}

	logger.Ctx(ctx).Info("Knowledge base document attached",
		zap.String("external_id", externalID),
		zap.String("document_id", doc.ID))
	return &entry, nil
}

// RemoveDocument detaches a document from the agent and deletes it upstream
func (s *Agents) RemoveDocument(ctx context.Context, identity auth.Identity, ref, documentID string) error {
	resolved, err := s.resolver.AuthorizeAgent(ctx, identity, ref)
	if err != nil {
		return err
	}
	externalID := resolved.Agent.ElevenLabsAgentID

	remote, err := s.backend.GetAgent(ctx, externalID)
	if err != nil {
		return agent.UpstreamError(err)
	}

	current := agent.KnowledgeBase(remote)
	kb := make([]elevenlabs.KnowledgeBaseDocument, 0, len(current))
	for _, d := range current {
		if d.ID != documentID {
			kb = append(kb, d)
		}
	}
	if len(kb) == len(current) {
		return apperr.NotFound("document not found")
	}

	if _, err := s.backend.UpdateAgent(ctx, externalID, agent.Update{KnowledgeBase: &kb}.ToPatch()); err != nil {
		return agent.UpstreamError(err)
	}
	if err := s.backend.DeleteDocument(ctx, documentID); err != nil {
		return agent.UpstreamError(err)
	}

	logger.Ctx(ctx).Info("Knowledge base document removed",
		zap.String("external_id", externalID),
		zap.String("document_id", documentID))
	return nil
}

// PhoneNumbers lists the telephony numbers registered upstream
func (s *Agents) PhoneNumbers(ctx context.Context) ([]elevenlabs.PhoneNumber, error) {
	numbers, err := s.backend.ListPhoneNumbers(ctx)
	if err != nil {
		return nil, agent.UpstreamError(err)
	}
	if numbers == nil {
		numbers = []elevenlabs.PhoneNumber{}
	}
	return numbers, nil
}
