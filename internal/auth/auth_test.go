package auth

import (
	"context"
	"testing"

	"github.com/IBosman/zeeder-sub000/internal/model"
	"github.com/IBosman/zeeder-sub000/pkg/jwtutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTProvider() *JWTProvider {
	return NewJWTProvider(jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "secret", ExpirationHours: 168}))
}

func TestJWTProvider_RoundTrip(t *testing.T) {
	p := newJWTProvider()
	companyID := uint(7)

	token, err := p.Issue(Identity{UserID: 3, Username: "alice", Role: model.RoleUser, CompanyID: &companyID})
	require.NoError(t, err)

	identity, err := p.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), identity.UserID)
	assert.Equal(t, "alice", identity.Username)
	assert.False(t, identity.IsAdmin())
	require.True(t, identity.HasCompany())
	assert.Equal(t, uint(7), *identity.CompanyID)
}

func TestJWTProvider_Rejects(t *testing.T) {
	p := newJWTProvider()
	other := NewJWTProvider(jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "other", ExpirationHours: 1}))
	foreign, err := other.Issue(Identity{UserID: 1, Role: model.RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"missing header", "", ErrMissingToken},
		{"no scheme", "abc.def.ghi", ErrInvalidFormat},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ErrInvalidFormat},
		{"empty token", "Bearer ", ErrInvalidFormat},
		{"garbage token", "Bearer not-a-token", ErrInvalidToken},
		{"foreign signature", "Bearer " + foreign, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Authenticate(context.Background(), tt.header)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDemoProvider(t *testing.T) {
	p := NewDemoProvider(DemoIdentity())

	identity, err := p.Authenticate(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin())
	require.NotNil(t, identity.CompanyID)
	assert.Equal(t, uint(1), *identity.CompanyID)

	*identity.CompanyID = 42
	again, _ := p.Authenticate(context.Background(), "Bearer whatever")
	assert.Equal(t, uint(1), *again.CompanyID)

	token, err := p.Issue(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestIdentity_HasCompany(t *testing.T) {
	zero := uint(0)
	assert.False(t, Identity{}.HasCompany())
	assert.False(t, Identity{CompanyID: &zero}.HasCompany())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrPasswordMismatch)
	assert.ErrorIs(t, CheckPassword("plaintext", "plaintext"), ErrPasswordMismatch)
}
