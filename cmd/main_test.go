package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/IBosman/zeeder-sub000/internal/auth"
	"github.com/IBosman/zeeder-sub000/internal/repository"
	"github.com/IBosman/zeeder-sub000/internal/service"
	"github.com/IBosman/zeeder-sub000/pkg/config"
	"github.com/IBosman/zeeder-sub000/pkg/jwtutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"serve", "migrate", "sync-voices", "create-admin"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := newServeCommand()
	assert.NotNil(t, cmd.Flags().Lookup(portFlag))
}

func TestCreateAdminRequiresAllFlags(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"create-admin", "--username", "ops"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestEnsureDefaultAdminKeepsGeneratedPasswordOutOfLogs(t *testing.T) {
	store := repository.NewMemoryStore()
	provider := auth.NewJWTProvider(jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "cmd-test", ExpirationHours: 1}))
	a := &app{
		cfg:       &config.Config{Admin: config.AdminConfig{Username: "admin", Email: "admin@example.com"}},
		directory: service.NewDirectory(store, provider),
	}
	core, logs := observer.New(zap.InfoLevel)
	var out bytes.Buffer

	require.NoError(t, ensureDefaultAdmin(context.Background(), a, zap.New(core), &out))

	printed := out.String()
	require.Contains(t, printed, "Generated password for admin \"admin\"")
	password := strings.TrimSpace(strings.SplitN(strings.SplitN(printed, ": ", 2)[1], "\n", 2)[0])
	require.NotEmpty(t, password)

	_, err := a.directory.Login(context.Background(), "admin", password)
	require.NoError(t, err)

	entries := logs.FilterMessage("Default admin account created").All()
	require.Len(t, entries, 1)
	for _, field := range entries[0].Context {
		assert.NotContains(t, field.String, password)
	}
	assert.Equal(t, true, entries[0].ContextMap()["generated_password"])

	// second start finds the account and prints nothing
	out.Reset()
	require.NoError(t, ensureDefaultAdmin(context.Background(), a, zap.New(core), &out))
	assert.Empty(t, out.String())
}
