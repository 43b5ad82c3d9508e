package service

import (
	"context"
	"errors"

	"github.com/IBosman/zeeder-sub000/internal/apperr"
	"github.com/IBosman/zeeder-sub000/internal/model"
	"github.com/IBosman/zeeder-sub000/internal/repository"
	"github.com/IBosman/zeeder-sub000/internal/tenant"
	"github.com/IBosman/zeeder-sub000/pkg/config"
	"github.com/IBosman/zeeder-sub000/pkg/logger"
	"github.com/IBosman/zeeder-sub000/prometheus"
	"go.uber.org/zap"
)

// Assignments mutates the company relations of voices, users and agents
type Assignments struct {
	store    repository.Store
	resolver *tenant.Resolver
	policy   string
}

// NewAssignments creates the assignment service. policy decides what removing
// an agent from its company does, see config.RemovalPolicyUnassign.
func NewAssignments(store repository.Store, resolver *tenant.Resolver, policy string) *Assignments {
	if policy == "" {
		policy = config.RemovalPolicyUnassign
	}
	return &Assignments{store: store, resolver: resolver, policy: policy}
}

func (a *Assignments) company(ctx context.Context, id uint) (*model.Company, error) {
	company, err := a.store.GetCompany(ctx, id)
	if err != nil {
		return nil, storeErr(err, "company not found", "", "failed to load company")
	}
	return company, nil
}

// CompanyVoices lists the voices granted to a company
func (a *Assignments) CompanyVoices(ctx context.Context, companyID uint) ([]model.Voice, error) {
	if _, err := a.company(ctx, companyID); err != nil {
		return nil, err
	}
	voices, err := a.store.ListVoicesByCompany(ctx, companyID)
	if err != nil {
		return nil, apperr.Internal("failed to list company voices", err)
	}
	return voices, nil
}

// AssignVoice grants a voice to a company; an existing grant is a conflict
func (a *Assignments) AssignVoice(ctx context.Context, companyID uint, voiceID string) (cv *model.CompanyVoice, err error) {
	defer func() { prometheus.RecordAssignment("assign_voice", err) }()

	if voiceID == "" {
		return nil, apperr.BadRequest("voiceId is required")
	}
	if _, err := a.company(ctx, companyID); err != nil {
		return nil, err
	}
	if _, err := a.store.GetVoice(ctx, voiceID); err != nil {
		return nil, storeErr(err, "voice not found", "", "failed to load voice")
	}

	cv = &model.CompanyVoice{CompanyID: companyID, VoiceID: voiceID}
	if err := a.store.CreateCompanyVoice(ctx, cv); err != nil {
		return nil, storeErr(err, "", "voice already assigned to company", "failed to assign voice")
	}
	return cv, nil
}

// UnassignVoice revokes a voice grant
func (a *Assignments) UnassignVoice(ctx context.Context, companyID uint, voiceID string) (err error) {
	defer func() { prometheus.RecordAssignment("unassign_voice", err) }()

	return storeErr(a.store.DeleteCompanyVoice(ctx, companyID, voiceID),
		"voice not assigned to company", "", "failed to unassign voice")
}

// CompanyUsers lists the members of a company
func (a *Assignments) CompanyUsers(ctx context.Context, companyID uint) ([]model.User, error) {
	if _, err := a.company(ctx, companyID); err != nil {
		return nil, err
	}
	users, err := a.store.ListUsersByCompany(ctx, companyID)
	if err != nil {
		return nil, apperr.Internal("failed to list company users", err)
	}
	return users, nil
}

// AssignUser binds an unassigned user to a company
func (a *Assignments) AssignUser(ctx context.Context, companyID, userID uint) (user *model.User, err error) {
	defer func() { prometheus.RecordAssignment("assign_user", err) }()

	if _, err := a.company(ctx, companyID); err != nil {
		return nil, err
	}
	user, err = a.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user not found", "", "failed to load user")
	}

	if user.CompanyID != nil && *user.CompanyID != 0 {
		if *user.CompanyID == companyID {
			return nil, apperr.Conflict("user already belongs to this company")
		}
		return nil, apperr.Conflict("user already belongs to another company")
	}

	if err := a.store.SetUserCompany(ctx, userID, &companyID); err != nil {
		return nil, storeErr(err, "user not found", "", "failed to assign user")
	}
	user.CompanyID = &companyID
	return user, nil
}

// RemoveUser unbinds a user from the company named in the request
func (a *Assignments) RemoveUser(ctx context.Context, companyID, userID uint) (err error) {
	defer func() { prometheus.RecordAssignment("remove_user", err) }()

	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		return storeErr(err, "user not found", "", "failed to load user")
	}
	if user.CompanyID == nil || *user.CompanyID != companyID {
		return apperr.BadRequest("user does not belong to this company")
	}
	return storeErr(a.store.SetUserCompany(ctx, userID, nil), "user not found", "", "failed to remove user")
}

// CompanyAgents lists the agents owned by a company
func (a *Assignments) CompanyAgents(ctx context.Context, companyID uint) ([]model.Agent, error) {
	if _, err := a.company(ctx, companyID); err != nil {
		return nil, err
	}
	agents, err := a.store.ListAgentsByCompany(ctx, companyID)
	if err != nil {
		return nil, apperr.Internal("failed to list company agents", err)
	}
	return agents, nil
}

// AssignAgent moves an agent, referenced by external or local ID, to a company
func (a *Assignments) AssignAgent(ctx context.Context, companyID uint, ref string) (agent *model.Agent, err error) {
	defer func() { prometheus.RecordAssignment("assign_agent", err) }()

	if _, err := a.company(ctx, companyID); err != nil {
		return nil, err
	}
	resolved, err := a.resolver.ResolveAgent(ctx, ref)
	if err != nil {
		return nil, err
	}

	agent = resolved.Agent
	if err := a.store.SetAgentCompany(ctx, agent.ID, &companyID); err != nil {
		return nil, storeErr(err, "agent not found", "", "failed to assign agent")
	}
	agent.CompanyID = &companyID
	return agent, nil
}

// RemoveAgent takes an agent away from a company. Depending on the policy the
// agent is left unassigned or handed to the lowest-id other company.
func (a *Assignments) RemoveAgent(ctx context.Context, companyID uint, ref string) (agent *model.Agent, err error) {
	defer func() { prometheus.RecordAssignment("remove_agent", err) }()

	resolved, err := a.resolver.ResolveAgent(ctx, ref)
	if err != nil {
		return nil, err
	}
	agent = resolved.Agent
	if agent.CompanyID == nil || *agent.CompanyID != companyID {
		return nil, apperr.BadRequest("agent does not belong to this company")
	}

	var target *uint
	if a.policy == config.RemovalPolicyReassign {
		other, err := a.store.FindOtherCompany(ctx, companyID)
		if errors.Is(err, repository.ErrNoOtherCompany) {
			return nil, apperr.Conflict("cannot remove agent: no other company to reassign it to")
		}
		if err != nil {
			return nil, apperr.Internal("failed to find another company", err)
		}
		target = &other.ID
	}

	if err := a.store.SetAgentCompany(ctx, agent.ID, target); err != nil {
		return nil, storeErr(err, "agent not found", "", "failed to remove agent")
	}
	agent.CompanyID = target

	log := logger.Ctx(ctx).With(zap.Uint("agent_id", agent.ID), zap.Uint("from_company_id", companyID))
	if target != nil {
		log.Info("Agent reassigned", zap.Uint("to_company_id", *target))
	} else {
		log.Info("Agent unassigned")
	}
	return agent, nil
}
