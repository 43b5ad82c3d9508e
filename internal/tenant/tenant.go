// Package tenant decides which company-scoped resources a caller may touch.
package tenant

import (
	"context"
	"errors"
	"strconv"

	"github.com/IBosman/zeeder-sub000/internal/apperr"
	"github.com/IBosman/zeeder-sub000/internal/auth"
	"github.com/IBosman/zeeder-sub000/internal/model"
	"github.com/IBosman/zeeder-sub000/internal/repository"
)

// Kind tells which key an agent reference matched
type Kind string

const (
	KindExternal Kind = "external"
	KindLocal    Kind = "local"
)

// ErrAgentNotFound hides agents of other tenants as well as missing ones
var ErrAgentNotFound = apperr.NotFound("agent not found")

// CanAccess reports whether identity may access a resource owned by companyID.
// Admins bypass scoping; everyone else needs a matching, non-empty company.
func CanAccess(identity auth.Identity, companyID *uint) bool {
	if identity.IsAdmin() {
		return true
	}
	if !identity.HasCompany() || companyID == nil || *companyID == 0 {
		return false
	}
	return *identity.CompanyID == *companyID
}

// Resolved is an agent together with the key it was found by
type Resolved struct {
	Kind  Kind
	Agent *model.Agent
}

// AgentFinder is the subset of the store the resolver needs
type AgentFinder interface {
	GetAgent(ctx context.Context, id uint) (*model.Agent, error)
	GetAgentByExternalID(ctx context.Context, externalID string) (*model.Agent, error)
}

// Resolver locates agents by external ID or local numeric ID
type Resolver struct {
	agents AgentFinder
}

// NewResolver creates a resolver over the given store
func NewResolver(agents AgentFinder) *Resolver {
	return &Resolver{agents: agents}
}

// ResolveAgent tries the external ID first and falls back to the local ID
func (r *Resolver) ResolveAgent(ctx context.Context, ref string) (Resolved, error) {
	if ref == "" {
		return Resolved{}, ErrAgentNotFound
	}

	agent, err := r.agents.GetAgentByExternalID(ctx, ref)
	if err == nil {
		return Resolved{Kind: KindExternal, Agent: agent}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return Resolved{}, apperr.Internal("failed to look up agent", err)
	}

	id, convErr := strconv.ParseUint(ref, 10, 64)
	if convErr != nil || id == 0 {
		return Resolved{}, ErrAgentNotFound
	}

	agent, err = r.agents.GetAgent(ctx, uint(id))
	if errors.Is(err, repository.ErrNotFound) {
		return Resolved{}, ErrAgentNotFound
	}
	if err != nil {
		return Resolved{}, apperr.Internal("failed to look up agent", err)
	}
	return Resolved{Kind: KindLocal, Agent: agent}, nil
}

// AuthorizeAgent resolves ref and checks that identity may access it.
// Agents outside the caller's company are reported as not found.
func (r *Resolver) AuthorizeAgent(ctx context.Context, identity auth.Identity, ref string) (Resolved, error) {
	resolved, err := r.ResolveAgent(ctx, ref)
	if err != nil {
		return Resolved{}, err
	}
	if !CanAccess(identity, resolved.Agent.CompanyID) {
		return Resolved{}, ErrAgentNotFound
	}
	return resolved, nil
}
