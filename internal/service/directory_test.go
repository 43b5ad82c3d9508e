package service

import (
	"net/http"
	"strings"
	"testing"

	"github.com/IBosman/zeeder-sub000/internal/agent"
	"github.com/IBosman/zeeder-sub000/internal/auth"
	"github.com/IBosman/zeeder-sub000/internal/model"
	"github.com/IBosman/zeeder-sub000/internal/repository"
	"github.com/IBosman/zeeder-sub000/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_RegisterAndLogin(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)

	session, err := f.directory.Register(f.ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "wonderland"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, model.RoleUser, session.User.Role)
	assert.Nil(t, session.User.CompanyID)
	assert.NotEqual(t, "wonderland", session.User.PasswordHash)

	byName, err := f.directory.Login(f.ctx, "alice", "wonderland")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, byName.User.ID)

	byEmail, err := f.directory.Login(f.ctx, "alice@example.com", "wonderland")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, byEmail.User.ID)

	_, err = f.directory.Login(f.ctx, "alice", "wrong")
	assertStatus(t, http.StatusUnauthorized, err)
	_, err = f.directory.Login(f.ctx, "nobody", "wonderland")
	assertStatus(t, http.StatusUnauthorized, err)
	_, err = f.directory.Login(f.ctx, "", "")
	assertStatus(t, http.StatusBadRequest, err)

	_, err = f.directory.Register(f.ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "wonderland"})
	assertStatus(t, http.StatusConflict, err)
}

func TestDirectory_CreateUserValidation(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	missing := uint(42)

	tests := []struct {
		name string
		in   CreateUserInput
		want int
	}{
		{"missing fields", CreateUserInput{Username: "u"}, http.StatusBadRequest},
		{"bad email", CreateUserInput{Username: "u", Email: "nope", Password: "secret1"}, http.StatusBadRequest},
		{"short password", CreateUserInput{Username: "u", Email: "u@example.com", Password: "abc"}, http.StatusBadRequest},
		{"bad role", CreateUserInput{Username: "u", Email: "u@example.com", Password: "secret1", Role: "root"}, http.StatusBadRequest},
		{"unknown company", CreateUserInput{Username: "u", Email: "u@example.com", Password: "secret1", CompanyID: &missing}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.directory.CreateUser(f.ctx, tt.in)
			assertStatus(t, tt.want, err)
		})
	}
}

func TestDirectory_UpdateAndDeleteUser(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	acme := f.company(t, "Acme")
	user, err := f.directory.CreateUser(f.ctx, CreateUserInput{Username: "bob", Email: "bob@example.com", Password: "builder"})
	require.NoError(t, err)

	role := model.RoleAdmin
	password := "new-password"
	updated, err := f.directory.UpdateUser(f.ctx, user.ID, UpdateUserInput{Role: &role, Password: &password, CompanyID: &acme.ID})
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())
	assert.Equal(t, acme.ID, *updated.CompanyID)

	_, err = f.directory.Login(f.ctx, "bob", "new-password")
	require.NoError(t, err)

	assertStatus(t, http.StatusBadRequest, f.directory.DeleteUser(f.ctx, auth.Identity{UserID: user.ID, Role: model.RoleAdmin}, user.ID))
	require.NoError(t, f.directory.DeleteUser(f.ctx, admin, user.ID))
	assertStatus(t, http.StatusNotFound, f.directory.DeleteUser(f.ctx, admin, user.ID))

	_, err = f.directory.UpdateUser(f.ctx, user.ID, UpdateUserInput{Role: &role})
	assertStatus(t, http.StatusNotFound, err)
}

func TestDirectory_UpdateUserCompanyMove(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	acme := f.company(t, "Acme")
	globex := f.company(t, "Globex")
	user, err := f.directory.CreateUser(f.ctx, CreateUserInput{
		Username: "carol", Email: "carol@example.com", Password: "secret1", CompanyID: &acme.ID,
	})
	require.NoError(t, err)

	_, err = f.directory.UpdateUser(f.ctx, user.ID, UpdateUserInput{CompanyID: &globex.ID})
	assertStatus(t, http.StatusConflict, err)

	stored, err := f.store.GetUser(f.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, acme.ID, *stored.CompanyID)

	// same company is a no-op
	_, err = f.directory.UpdateUser(f.ctx, user.ID, UpdateUserInput{CompanyID: &acme.ID})
	require.NoError(t, err)

	zero := uint(0)
	updated, err := f.directory.UpdateUser(f.ctx, user.ID, UpdateUserInput{CompanyID: &zero})
	require.NoError(t, err)
	assert.Nil(t, updated.CompanyID)

	updated, err = f.directory.UpdateUser(f.ctx, user.ID, UpdateUserInput{CompanyID: &globex.ID})
	require.NoError(t, err)
	assert.Equal(t, globex.ID, *updated.CompanyID)
}

func TestDirectory_EnsureDefaultAdmin(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	in := AdminInput{Username: "admin", Email: "admin@example.com", Password: "changeme"}

	created, err := f.directory.EnsureDefaultAdmin(f.ctx, in)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.directory.EnsureDefaultAdmin(f.ctx, in)
	require.NoError(t, err)
	assert.False(t, created)

	session, err := f.directory.Login(f.ctx, "admin", "changeme")
	require.NoError(t, err)
	assert.True(t, session.User.IsAdmin())
}

func TestDirectory_Companies(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)

	_, err := f.directory.CreateCompany(f.ctx, CompanyInput{})
	assertStatus(t, http.StatusBadRequest, err)

	acme := f.company(t, "Acme")
	assert.True(t, acme.Active)

	name := "Acme"
	_, err = f.directory.CreateCompany(f.ctx, CompanyInput{Name: &name})
	assertStatus(t, http.StatusConflict, err)

	renamed := "Acme Corp"
	inactive := false
	updated, err := f.directory.UpdateCompany(f.ctx, acme.ID, CompanyInput{Name: &renamed, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.False(t, updated.Active)

	companies, err := f.directory.ListCompanies(f.ctx)
	require.NoError(t, err)
	require.Len(t, companies, 1)

	require.NoError(t, f.directory.DeleteCompany(f.ctx, acme.ID))
	_, err = f.directory.GetCompany(f.ctx, acme.ID)
	assertStatus(t, http.StatusNotFound, err)
}

func TestAgents_KnowledgeBase(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	acme := f.company(t, "Acme")
	a := f.agent(t, agent.DemoAgents[0], &acme.ID)
	caller := member(acme.ID)

	doc, err := f.agents.AddDocument(f.ctx, caller, a.ElevenLabsAgentID, "menu.txt", strings.NewReader("soup"))
	require.NoError(t, err)
	assert.Equal(t, "file", doc.Type)
	assert.Equal(t, "menu.txt", doc.Name)

	detail, err := f.agents.Get(f.ctx, caller, a.ElevenLabsAgentID)
	require.NoError(t, err)
	require.Len(t, detail.KnowledgeBase, 1)
	assert.Equal(t, doc.ID, detail.KnowledgeBase[0].ID)
	assert.Equal(t, agent.DemoAgents[0].SystemPrompt, detail.SystemPrompt)

	assertStatus(t, http.StatusNotFound, f.agents.RemoveDocument(f.ctx, caller, a.ElevenLabsAgentID, "unknown"))

	require.NoError(t, f.agents.RemoveDocument(f.ctx, caller, a.ElevenLabsAgentID, doc.ID))
	assert.Equal(t, []string{doc.ID}, f.backend.deletedDoc)

	detail, err = f.agents.Get(f.ctx, caller, a.ElevenLabsAgentID)
	require.NoError(t, err)
	assert.Empty(t, detail.KnowledgeBase)

	_, err = f.agents.AddDocument(f.ctx, caller, a.ElevenLabsAgentID, "", strings.NewReader(""))
	assertStatus(t, http.StatusBadRequest, err)
}

func TestAgents_PhoneNumbers(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)

	numbers, err := f.agents.PhoneNumbers(f.ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, numbers)
}

func TestSeedDemo(t *testing.T) {
	store := repository.NewMemoryStore()
	backend := agent.NewDemoBackend()

	identity, err := SeedDemo(t.Context(), store, backend)
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin())
	require.True(t, identity.HasCompany())

	agents, err := store.ListAgentsByCompany(t.Context(), *identity.CompanyID)
	require.NoError(t, err)
	assert.Len(t, agents, len(agent.DemoAgents))

	voices, err := store.ListVoicesByCompany(t.Context(), *identity.CompanyID)
	require.NoError(t, err)
	assert.NotEmpty(t, voices)

	user, err := store.GetUser(t.Context(), identity.UserID)
	require.NoError(t, err)
	assert.Equal(t, "demo", user.Username)
}
