package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/IBosman/zeeder-sub000/internal/agent"
	"github.com/IBosman/zeeder-sub000/internal/apperr"
	"github.com/IBosman/zeeder-sub000/internal/auth"
	"github.com/IBosman/zeeder-sub000/internal/model"
	"github.com/IBosman/zeeder-sub000/internal/repository"
	"github.com/IBosman/zeeder-sub000/internal/tenant"
	"github.com/IBosman/zeeder-sub000/pkg/config"
	"github.com/IBosman/zeeder-sub000/pkg/elevenlabs"
	"github.com/IBosman/zeeder-sub000/pkg/jwtutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records patches and can override the voice catalog or fail calls
type fakeBackend struct {
	*agent.DemoBackend

	mu         sync.Mutex
	patches    []*elevenlabs.Agent
	voices     []elevenlabs.Voice
	failWith   error
	deletedDoc []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{DemoBackend: agent.NewDemoBackend()}
}

func (f *fakeBackend) UpdateAgent(ctx context.Context, agentID string, patch *elevenlabs.Agent) (*elevenlabs.Agent, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	f.patches = append(f.patches, patch)
	f.mu.Unlock()
	return f.DemoBackend.UpdateAgent(ctx, agentID, patch)
}

func (f *fakeBackend) GetAgent(ctx context.Context, agentID string) (*elevenlabs.Agent, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.DemoBackend.GetAgent(ctx, agentID)
}

func (f *fakeBackend) ListVoices(ctx context.Context) ([]elevenlabs.Voice, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.voices != nil {
		return f.voices, nil
	}
	return f.DemoBackend.ListVoices(ctx)
}

func (f *fakeBackend) DeleteDocument(ctx context.Context, documentID string) error {
	f.mu.Lock()
	f.deletedDoc = append(f.deletedDoc, documentID)
	f.mu.Unlock()
	return f.DemoBackend.DeleteDocument(ctx, documentID)
}

type fixture struct {
	ctx         context.Context
	store       *repository.MemoryStore
	backend     *fakeBackend
	directory   *Directory
	assignments *Assignments
	voices      *VoiceCatalog
	agents      *Agents
}

func newFixture(t *testing.T, policy string) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	backend := newFakeBackend()
	resolver := tenant.NewResolver(store)
	provider := auth.NewJWTProvider(jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test", ExpirationHours: 168}))

	return &fixture{
		ctx:         context.Background(),
		store:       store,
		backend:     backend,
		directory:   NewDirectory(store, provider),
		assignments: NewAssignments(store, resolver, policy),
		voices:      NewVoiceCatalog(store, backend),
		agents:      NewAgents(store, backend, resolver),
	}
}

func (f *fixture) company(t *testing.T, name string) *model.Company {
	t.Helper()
	c, err := f.directory.CreateCompany(f.ctx, CompanyInput{Name: &name})
	require.NoError(t, err)
	return c
}

func (f *fixture) agent(t *testing.T, seed agent.DemoAgent, companyID *uint) *model.Agent {
	t.Helper()
	a := &model.Agent{ElevenLabsAgentID: seed.ID, Name: seed.Name, CompanyID: companyID}
	require.NoError(t, f.store.CreateAgent(f.ctx, a))
	return a
}

func member(companyID uint) auth.Identity {
	return auth.Identity{UserID: 100, Username: "member", Role: model.RoleUser, CompanyID: &companyID}
}

var admin = auth.Identity{UserID: 1, Username: "admin", Role: model.RoleAdmin}

func assertStatus(t *testing.T, want int, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, apperr.Status(err), apperr.Message(err))
}

func TestAgents_UserWithoutCompanyGetsEmptyList(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	acme := f.company(t, "Acme")
	f.agent(t, agent.DemoAgents[0], &acme.ID)

	agents, err := f.agents.List(f.ctx, auth.Identity{UserID: 5, Role: model.RoleUser})
	require.NoError(t, err)
	assert.NotNil(t, agents)
	assert.Empty(t, agents)

	agents, err = f.agents.List(f.ctx, member(acme.ID))
	require.NoError(t, err)
	assert.Len(t, agents, 1)

	agents, err = f.agents.List(f.ctx, admin)
	require.NoError(t, err)
	assert.Len(t, agents, 1)
}

func TestAgents_ForeignAgentIsNotFound(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	acme := f.company(t, "Acme")
	globex := f.company(t, "Globex")
	foreign := f.agent(t, agent.DemoAgents[0], &globex.ID)

	_, err := f.agents.Get(f.ctx, member(acme.ID), foreign.ElevenLabsAgentID)
	assertStatus(t, http.StatusNotFound, err)

	msg := "hijack"
	_, err = f.agents.Update(f.ctx, member(acme.ID), foreign.ElevenLabsAgentID, agent.Update{FirstMessage: &msg})
	assertStatus(t, http.StatusNotFound, err)
	assert.Empty(t, f.backend.patches)

	detail, err := f.agents.Get(f.ctx, admin, foreign.ElevenLabsAgentID)
	require.NoError(t, err)
	assert.Equal(t, agent.DemoAgents[0].SystemPrompt, detail.SystemPrompt)
	assert.Equal(t, &globex.ID, detail.CompanyID)
}

func TestAgents_GetByLocalID(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	acme := f.company(t, "Acme")
	local := f.agent(t, agent.DemoAgents[1], &acme.ID)

	detail, err := f.agents.Get(f.ctx, member(acme.ID), strconv.FormatUint(uint64(local.ID), 10))
	require.NoError(t, err)
	assert.Equal(t, local.ID, detail.ID)
	assert.Equal(t, agent.DemoAgents[1].FirstMessage, detail.FirstMessage)
}

func TestAssignments_DuplicateVoiceIsConflict(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	acme := f.company(t, "Acme")
	require.NoError(t, f.store.CreateVoice(f.ctx, &model.Voice{VoiceID: "v1", Name: "Rachel"}))

	_, err := f.assignments.AssignVoice(f.ctx, acme.ID, "v1")
	require.NoError(t, err)

	_, err = f.assignments.AssignVoice(f.ctx, acme.ID, "v1")
	assertStatus(t, http.StatusConflict, err)
	assert.Equal(t, 1, f.store.GrantCount())

	_, err = f.assignments.AssignVoice(f.ctx, acme.ID, "missing")
	assertStatus(t, http.StatusNotFound, err)
	_, err = f.assignments.AssignVoice(f.ctx, 999, "v1")
	assertStatus(t, http.StatusNotFound, err)

	require.NoError(t, f.assignments.UnassignVoice(f.ctx, acme.ID, "v1"))
	assertStatus(t, http.StatusNotFound, f.assignments.UnassignVoice(f.ctx, acme.ID, "v1"))
}

func TestAssignments_UserMovesOnlyAfterUnassign(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	a := f.company(t, "A")
	b := f.company(t, "B")
	user, err := f.directory.CreateUser(f.ctx, CreateUserInput{Username: "u", Email: "u@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.assignments.AssignUser(f.ctx, a.ID, user.ID)
	require.NoError(t, err)

	_, err = f.assignments.AssignUser(f.ctx, a.ID, user.ID)
	assertStatus(t, http.StatusConflict, err)
	assert.Equal(t, "user already belongs to this company", apperr.Message(err))

	_, err = f.assignments.AssignUser(f.ctx, b.ID, user.ID)
	assertStatus(t, http.StatusConflict, err)
	assert.Equal(t, "user already belongs to another company", apperr.Message(err))

	zero := uint(0)
	updated, err := f.directory.UpdateUser(f.ctx, user.ID, UpdateUserInput{CompanyID: &zero})
	require.NoError(t, err)
	assert.Nil(t, updated.CompanyID)

	moved, err := f.assignments.AssignUser(f.ctx, b.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, *moved.CompanyID)

	members, err := f.assignments.CompanyUsers(f.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, user.ID, members[0].ID)
}

func TestAssignments_RemoveUserChecksCompany(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	a := f.company(t, "A")
	b := f.company(t, "B")
	user, err := f.directory.CreateUser(f.ctx, CreateUserInput{Username: "u", Email: "u@example.com", Password: "secret1", CompanyID: &a.ID})
	require.NoError(t, err)

	assertStatus(t, http.StatusBadRequest, f.assignments.RemoveUser(f.ctx, b.ID, user.ID))
	require.NoError(t, f.assignments.RemoveUser(f.ctx, a.ID, user.ID))

	got, err := f.store.GetUser(f.ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CompanyID)
}

func TestAssignments_RemoveAgentReassignPolicy(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyReassign)
	only := f.company(t, "Only")
	a := f.agent(t, agent.DemoAgents[0], &only.ID)

	_, err := f.assignments.RemoveAgent(f.ctx, only.ID, a.ElevenLabsAgentID)
	assertStatus(t, http.StatusConflict, err)

	got, err := f.store.GetAgent(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, only.ID, *got.CompanyID)

	other := f.company(t, "Other")
	moved, err := f.assignments.RemoveAgent(f.ctx, only.ID, a.ElevenLabsAgentID)
	require.NoError(t, err)
	require.NotNil(t, moved.CompanyID)
	assert.Equal(t, other.ID, *moved.CompanyID)
}

func TestAssignments_RemoveAgentUnassignPolicy(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	only := f.company(t, "Only")
	a := f.agent(t, agent.DemoAgents[0], &only.ID)

	removed, err := f.assignments.RemoveAgent(f.ctx, only.ID, a.ElevenLabsAgentID)
	require.NoError(t, err)
	assert.Nil(t, removed.CompanyID)

	_, err = f.assignments.RemoveAgent(f.ctx, only.ID, a.ElevenLabsAgentID)
	assertStatus(t, http.StatusBadRequest, err)
}

func TestAssignments_AssignAgentOverwrites(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	a := f.company(t, "A")
	b := f.company(t, "B")
	ag := f.agent(t, agent.DemoAgents[0], &a.ID)

	_, err := f.assignments.AssignAgent(f.ctx, b.ID, ag.ElevenLabsAgentID)
	require.NoError(t, err)

	agents, err := f.assignments.CompanyAgents(f.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, ag.ID, agents[0].ID)

	_, err = f.assignments.AssignAgent(f.ctx, b.ID, "unknown")
	assertStatus(t, http.StatusNotFound, err)
}

func TestVoiceCatalog_SyncIsFullReplace(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	acme := f.company(t, "Acme")
	require.NoError(t, f.store.CreateVoice(f.ctx, &model.Voice{VoiceID: "stale", Name: "Stale"}))
	require.NoError(t, f.store.CreateVoice(f.ctx, &model.Voice{VoiceID: "v1", Name: "Old name"}))
	_, err := f.assignments.AssignVoice(f.ctx, acme.ID, "stale")
	require.NoError(t, err)
	_, err = f.assignments.AssignVoice(f.ctx, acme.ID, "v1")
	require.NoError(t, err)

	f.backend.voices = []elevenlabs.Voice{
		{VoiceID: "v1", Name: "Rachel", Category: "premade", Labels: map[string]string{"accent": "american"}},
		{VoiceID: "v2", Name: "Adam", Category: "premade"},
		{VoiceID: "v2", Name: "Adam", Category: "premade"},
	}

	n, err := f.voices.Sync(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	voices, err := f.voices.List(f.ctx, admin)
	require.NoError(t, err)
	ids := []string{}
	for _, v := range voices {
		ids = append(ids, v.VoiceID)
	}
	assert.ElementsMatch(t, []string{"v1", "v2"}, ids)
	for _, v := range voices {
		if v.VoiceID == "v1" {
			assert.Equal(t, "Rachel", v.Name)
			assert.JSONEq(t, `{"accent":"american"}`, string(v.Labels))
		}
	}

	granted, err := f.voices.List(f.ctx, member(acme.ID))
	require.NoError(t, err)
	require.Len(t, granted, 1)
	assert.Equal(t, "v1", granted[0].VoiceID)

	none, err := f.voices.List(f.ctx, auth.Identity{Role: model.RoleUser})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestVoiceCatalog_SyncFailureKeepsCatalog(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	require.NoError(t, f.store.CreateVoice(f.ctx, &model.Voice{VoiceID: "v1", Name: "Rachel"}))
	f.backend.failWith = &elevenlabs.APIError{StatusCode: http.StatusUnauthorized, Body: "invalid api key"}

	_, err := f.voices.Sync(f.ctx)
	assertStatus(t, http.StatusBadGateway, err)
	assert.Contains(t, apperr.Message(err), "invalid api key")

	voices, err := f.store.ListVoices(f.ctx)
	require.NoError(t, err)
	assert.Len(t, voices, 1)
}

func TestAgents_PartialUpdateLeavesOtherFields(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	acme := f.company(t, "Acme")
	a := f.agent(t, agent.DemoAgents[0], &acme.ID)

	msg := "Good morning!"
	detail, err := f.agents.Update(f.ctx, member(acme.ID), a.ElevenLabsAgentID, agent.Update{FirstMessage: &msg})
	require.NoError(t, err)
	assert.Equal(t, "Good morning!", detail.FirstMessage)
	assert.Equal(t, agent.DemoAgents[0].SystemPrompt, detail.SystemPrompt)

	require.Len(t, f.backend.patches, 1)
	patch := f.backend.patches[0]
	assert.Nil(t, patch.Name)
	require.NotNil(t, patch.ConversationConfig)
	assert.Nil(t, patch.ConversationConfig.TTS)
	require.NotNil(t, patch.ConversationConfig.Agent)
	assert.Nil(t, patch.ConversationConfig.Agent.Prompt)

	remote, err := f.backend.GetAgent(f.ctx, a.ElevenLabsAgentID)
	require.NoError(t, err)
	after := agent.Flatten(a, remote)
	assert.Equal(t, agent.DemoAgents[0].SystemPrompt, after.SystemPrompt)
	assert.Empty(t, after.Tools)
	assert.Empty(t, after.KnowledgeBase)
}

func TestAgents_UpdateRules(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	acme := f.company(t, "Acme")
	a := f.agent(t, agent.DemoAgents[0], &acme.ID)

	_, err := f.agents.Update(f.ctx, admin, a.ElevenLabsAgentID, agent.Update{})
	assertStatus(t, http.StatusBadRequest, err)

	name := "Front desk"
	voice := "v9"
	detail, err := f.agents.Update(f.ctx, admin, a.ElevenLabsAgentID, agent.Update{Name: &name, VoiceID: &voice})
	require.NoError(t, err)
	assert.Equal(t, "Front desk", detail.Name)
	assert.Equal(t, "v9", detail.VoiceID)

	local, err := f.store.GetAgent(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Front desk", local.Name)
}

func TestAgents_UpstreamFailure(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	acme := f.company(t, "Acme")
	a := f.agent(t, agent.DemoAgents[0], &acme.ID)

	f.backend.failWith = errors.New("connection reset by peer")
	_, err := f.agents.Get(f.ctx, admin, a.ElevenLabsAgentID)
	assertStatus(t, http.StatusBadGateway, err)
	assert.Contains(t, apperr.Message(err), "connection reset by peer")
}

func TestAgents_CreateAndDelete(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	acme := f.company(t, "Acme")

	_, err := f.agents.Create(f.ctx, admin, CreateAgentInput{})
	assertStatus(t, http.StatusBadRequest, err)

	missing := uint(999)
	_, err = f.agents.Create(f.ctx, admin, CreateAgentInput{Name: "X", CompanyID: &missing})
	assertStatus(t, http.StatusNotFound, err)

	prompt := "Take orders"
	detail, err := f.agents.Create(f.ctx, admin, CreateAgentInput{Name: "Orders", SystemPrompt: &prompt, CompanyID: &acme.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, detail.ElevenLabsAgentID)
	assert.Equal(t, "Take orders", detail.SystemPrompt)
	require.NotNil(t, detail.CreatedBy)
	assert.Equal(t, admin.UserID, *detail.CreatedBy)

	fetched, err := f.agents.Get(f.ctx, member(acme.ID), detail.ElevenLabsAgentID)
	require.NoError(t, err)
	assert.Equal(t, "Orders", fetched.Name)

	require.NoError(t, f.agents.Delete(f.ctx, admin, detail.ElevenLabsAgentID))
	_, err = f.store.GetAgentByExternalID(f.ctx, detail.ElevenLabsAgentID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NotContains(t, f.backend.AgentIDs(), detail.ElevenLabsAgentID)
}

func TestAgents_DeleteMissingUpstream(t *testing.T) {
	f := newFixture(t, config.RemovalPolicyUnassign)
	orphan := &model.Agent{ElevenLabsAgentID: "gone_upstream", Name: "Orphan"}
	require.NoError(t, f.store.CreateAgent(f.ctx, orphan))

	require.NoError(t, f.agents.Delete(f.ctx, admin, orphan.ElevenLabsAgentID))
	_, err := f.store.GetAgent(f.ctx, orphan.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
