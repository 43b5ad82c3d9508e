package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "secret", ExpirationHours: 168})
	companyID := uint(3)

	token, err := util.GenerateToken(7, "alice", "user", &companyID)
	require.NoError(t, err)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.Role)
	require.NotNil(t, claims.CompanyID)
	assert.Equal(t, uint(3), *claims.CompanyID)

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 7*24*time.Hour, ttl)
}

func TestValidate_Expired(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "secret", ExpirationHours: 1})
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	util.now = func() time.Time { return issued }

	token, err := util.GenerateToken(1, "bob", "admin", nil)
	require.NoError(t, err)

	util.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = util.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidate_WrongKey(t *testing.T) {
	signer := NewJWTUtil(&JWTConfig{SigningKey: "one", ExpirationHours: 1})
	verifier := NewJWTUtil(&JWTConfig{SigningKey: "two", ExpirationHours: 1})

	token, err := signer.GenerateToken(1, "bob", "user", nil)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestGenerate_NoKey(t *testing.T) {
	_, err := NewJWTUtil(&JWTConfig{}).GenerateToken(1, "x", "user", nil)
	assert.Error(t, err)
}
