// Package auth resolves a request's bearer credentials to the caller's identity.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/IBosman/zeeder-sub000/internal/model"
	"github.com/IBosman/zeeder-sub000/pkg/jwtutil"
	"github.com/IBosman/zeeder-sub000/prometheus"
)

var (
	ErrMissingToken  = errors.New("missing authorization token")
	ErrInvalidFormat = errors.New("invalid authorization format, expected Bearer token")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

// Identity is the authenticated caller
type Identity struct {
	UserID    uint   `json:"userId"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CompanyID *uint  `json:"companyId"`
}

// IsAdmin reports whether tenant scoping is bypassed for the caller
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// HasCompany reports whether the caller is bound to a company
func (i Identity) HasCompany() bool {
	return i.CompanyID != nil && *i.CompanyID != 0
}

// IdentityOf builds the identity carried in tokens issued for user
func IdentityOf(user *model.User) Identity {
	return Identity{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CompanyID: user.CompanyID,
	}
}

// Provider turns the Authorization header value into an Identity
type Provider interface {
	Authenticate(ctx context.Context, authorization string) (Identity, error)
	// Issue returns a token for identity, empty when the provider needs none
	Issue(identity Identity) (string, error)
}

// JWTProvider authenticates HS256 bearer tokens
type JWTProvider struct {
	jwt *jwtutil.JWTUtil
}

// NewJWTProvider creates a provider backed by the given signer
func NewJWTProvider(jwt *jwtutil.JWTUtil) *JWTProvider {
	return &JWTProvider{jwt: jwt}
}

func (p *JWTProvider) Authenticate(_ context.Context, authorization string) (Identity, error) {
	if authorization == "" {
		prometheus.RecordAuthError("missing_token")
		return Identity{}, ErrMissingToken
	}

	parts := strings.Split(authorization, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		prometheus.RecordAuthError("invalid_format")
		return Identity{}, ErrInvalidFormat
	}

	claims, err := p.jwt.ValidateToken(parts[1])
	if err != nil {
		prometheus.RecordAuthError("invalid_token")
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		CompanyID: claims.CompanyID,
	}, nil
}

func (p *JWTProvider) Issue(identity Identity) (string, error) {
	return p.jwt.GenerateToken(identity.UserID, identity.Username, identity.Role, identity.CompanyID)
}

// DemoProvider substitutes a fixed identity and never rejects
type DemoProvider struct {
	identity Identity
}

// DemoIdentity is the admin identity used when no seeded user is available
func DemoIdentity() Identity {
	companyID := uint(1)
	return Identity{
		UserID:    1,
		Username:  "demo",
		Role:      model.RoleAdmin,
		CompanyID: &companyID,
	}
}

// NewDemoProvider returns the demo-mode provider for identity
func NewDemoProvider(identity Identity) *DemoProvider {
	return &DemoProvider{identity: identity}
}

func (p *DemoProvider) Authenticate(context.Context, string) (Identity, error) {
	return p.Identity(), nil
}

func (p *DemoProvider) Issue(Identity) (string, error) {
	return "demo-token", nil
}

// Identity returns a copy of the demo identity
func (p *DemoProvider) Identity() Identity {
	id := p.identity
	if id.CompanyID != nil {
		companyID := *id.CompanyID
		id.CompanyID = &companyID
	}
	return id
}
