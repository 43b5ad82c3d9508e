package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/IBosman/zeeder-sub000/internal/model"
)

// MemoryStore is a process-local Store used by demo deployments and tests.
// It enforces the same unique constraints as the relational schema.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[uint]model.User
	companies map[uint]model.Company
	agents    map[uint]model.Agent
	voices    map[string]model.Voice
	grants    map[grantKey]model.CompanyVoice
	nextID    uint
	now       func() time.Time
}

type grantKey struct {
	companyID uint
	voiceID   string
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[uint]model.User),
		companies: make(map[uint]model.Company),
		agents:    make(map[uint]model.Agent),
		voices:    make(map[string]model.Voice),
		grants:    make(map[grantKey]model.CompanyVoice),
		now:       time.Now,
	}
}

func (s *MemoryStore) id() uint {
	s.nextID++
	return s.nextID
}

func copyUint(v *uint) *uint {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (s *MemoryStore) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userTaken(user.Username, user.Email, 0) {
		return ErrDuplicate
	}
	user.ID = s.id()
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	stored.CompanyID = copyUint(user.CompanyID)
	s.users[user.ID] = stored
	return nil
}

func (s *MemoryStore) userTaken(username, email string, exceptID uint) bool {
	for id, u := range s.users {
		if id == exceptID {
			continue
		}
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) GetUser(_ context.Context, id uint) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.CompanyID = copyUint(u.CompanyID)
	return &u, nil
}

func (s *MemoryStore) GetUserByLogin(_ context.Context, login string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.sortedUsers() {
		if u.Username == login || u.Email == login {
			u.CompanyID = copyUint(u.CompanyID)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) sortedUsers() []model.User {
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		u.CompanyID = copyUint(u.CompanyID)
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedUsers(), nil
}

func (s *MemoryStore) ListUsersByCompany(_ context.Context, companyID uint) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.User{}
	for _, u := range s.sortedUsers() {
		if u.CompanyID != nil && *u.CompanyID == companyID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if s.userTaken(user.Username, user.Email, user.ID) {
		return ErrDuplicate
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = s.now()
	stored := *user
	stored.CompanyID = copyUint(user.CompanyID)
	s.users[user.ID] = stored
	return nil
}

func (s *MemoryStore) SetUserCompany(_ context.Context, userID uint, companyID *uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.CompanyID = copyUint(companyID)
	u.UpdatedAt = s.now()
	s.users[userID] = u
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) companyNameTaken(name string, exceptID uint) bool {
	for id, c := range s.companies {
		if id != exceptID && c.Name == name {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateCompany(_ context.Context, company *model.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.companyNameTaken(company.Name, 0) {
		return ErrDuplicate
	}
	company.ID = s.id()
	company.CreatedAt = s.now()
	company.UpdatedAt = company.CreatedAt
	s.companies[company.ID] = *company
	return nil
}

func (s *MemoryStore) GetCompany(_ context.Context, id uint) (*model.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.companies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) sortedCompanies() []model.Company {
	out := make([]model.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) ListCompanies(_ context.Context) ([]model.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedCompanies(), nil
}

func (s *MemoryStore) UpdateCompany(_ context.Context, company *model.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.companies[company.ID]
	if !ok {
		return ErrNotFound
	}
	if s.companyNameTaken(company.Name, company.ID) {
		return ErrDuplicate
	}
	company.CreatedAt = existing.CreatedAt
	company.UpdatedAt = s.now()
	s.companies[company.ID] = *company
	return nil
}

func (s *MemoryStore) DeleteCompany(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.companies[id]; !ok {
		return ErrNotFound
	}
	for uid, u := range s.users {
		if u.CompanyID != nil && *u.CompanyID == id {
			u.CompanyID = nil
			s.users[uid] = u
		}
	}
	for aid, a := range s.agents {
		if a.CompanyID != nil && *a.CompanyID == id {
			a.CompanyID = nil
			s.agents[aid] = a
		}
	}
	for key := range s.grants {
		if key.companyID == id {
			delete(s.grants, key)
		}
	}
	delete(s.companies, id)
	return nil
}

func (s *MemoryStore) FindOtherCompany(_ context.Context, excludeID uint) (*model.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.sortedCompanies() {
		if c.ID != excludeID {
			return &c, nil
		}
	}
	return nil, ErrNoOtherCompany
}

func (s *MemoryStore) externalIDTaken(externalID string, exceptID uint) bool {
	for id, a := range s.agents {
		if id != exceptID && a.ElevenLabsAgentID == externalID {
			return true
		}
	}
	return false
}

func cloneAgent(a model.Agent) model.Agent {
	a.CompanyID = copyUint(a.CompanyID)
	a.CreatedBy = copyUint(a.CreatedBy)
	return a
}

func (s *MemoryStore) CreateAgent(_ context.Context, agent *model.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.externalIDTaken(agent.ElevenLabsAgentID, 0) {
		return ErrDuplicate
	}
	agent.ID = s.id()
	agent.CreatedAt = s.now()
	agent.UpdatedAt = agent.CreatedAt
	s.agents[agent.ID] = cloneAgent(*agent)
	return nil
}

func (s *MemoryStore) GetAgent(_ context.Context, id uint) (*model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.agents[id]
	if !ok {
		return nil, ErrNotFound
	}
	a = cloneAgent(a)
	return &a, nil
}

func (s *MemoryStore) GetAgentByExternalID(_ context.Context, externalID string) (*model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.agents {
		if a.ElevenLabsAgentID == externalID {
			a = cloneAgent(a)
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) filterAgents(keep func(model.Agent) bool) []model.Agent {
	out := []model.Agent{}
	for _, a := range s.agents {
		if keep(a) {
			out = append(out, cloneAgent(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) ListAgents(_ context.Context) ([]model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterAgents(func(model.Agent) bool { return true }), nil
}

func (s *MemoryStore) ListAgentsByCompany(_ context.Context, companyID uint) ([]model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterAgents(func(a model.Agent) bool {
		return a.CompanyID != nil && *a.CompanyID == companyID
	}), nil
}

func (s *MemoryStore) UpdateAgent(_ context.Context, agent *model.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.agents[agent.ID]
	if !ok {
		return ErrNotFound
	}
	if s.externalIDTaken(agent.ElevenLabsAgentID, agent.ID) {
		return ErrDuplicate
	}
	agent.CreatedAt = existing.CreatedAt
	agent.UpdatedAt = s.now()
	s.agents[agent.ID] = cloneAgent(*agent)
	return nil
}

func (s *MemoryStore) SetAgentCompany(_ context.Context, agentID uint, companyID *uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agents[agentID]
	if !ok {
		return ErrNotFound
	}
	a.CompanyID = copyUint(companyID)
	a.UpdatedAt = s.now()
	s.agents[agentID] = a
	return nil
}

func (s *MemoryStore) DeleteAgent(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[id]; !ok {
		return ErrNotFound
	}
	delete(s.agents, id)
	return nil
}

func (s *MemoryStore) CreateVoice(_ context.Context, voice *model.Voice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.voices[voice.VoiceID]; ok {
		return ErrDuplicate
	}
	voice.CreatedAt = s.now()
	voice.UpdatedAt = voice.CreatedAt
	s.voices[voice.VoiceID] = *voice
	return nil
}

func (s *MemoryStore) GetVoice(_ context.Context, voiceID string) (*model.Voice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.voices[voiceID]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func sortVoices(voices []model.Voice) {
	sort.Slice(voices, func(i, j int) bool {
		if voices[i].Name != voices[j].Name {
			return voices[i].Name < voices[j].Name
		}
		return voices[i].VoiceID < voices[j].VoiceID
	})
}

func (s *MemoryStore) ListVoices(_ context.Context) ([]model.Voice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Voice, 0, len(s.voices))
	for _, v := range s.voices {
		out = append(out, v)
	}
	sortVoices(out)
	return out, nil
}

func (s *MemoryStore) ListVoicesByCompany(_ context.Context, companyID uint) ([]model.Voice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Voice{}
	for key := range s.grants {
		if key.companyID != companyID {
			continue
		}
		if v, ok := s.voices[key.voiceID]; ok {
			out = append(out, v)
		}
	}
	sortVoices(out)
	return out, nil
}

func (s *MemoryStore) ReplaceVoices(_ context.Context, voices []model.Voice) error {
	catalog := make(map[string]model.Voice, len(voices))
	now := s.now()
	for _, v := range dedupeVoices(voices) {
		v.CreatedAt = now
		v.UpdatedAt = now
		catalog[v.VoiceID] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.voices = catalog
	for key := range s.grants {
		if _, ok := catalog[key.voiceID]; !ok {
			delete(s.grants, key)
		}
	}
	return nil
}

func (s *MemoryStore) CreateCompanyVoice(_ context.Context, cv *model.CompanyVoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := grantKey{companyID: cv.CompanyID, voiceID: cv.VoiceID}
	if _, ok := s.grants[key]; ok {
		return ErrDuplicate
	}
	cv.ID = s.id()
	cv.CreatedAt = s.now()
	cv.UpdatedAt = cv.CreatedAt
	s.grants[key] = *cv
	return nil
}

func (s *MemoryStore) DeleteCompanyVoice(_ context.Context, companyID uint, voiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := grantKey{companyID: companyID, voiceID: voiceID}
	if _, ok := s.grants[key]; !ok {
		return ErrNotFound
	}
	delete(s.grants, key)
	return nil
}

// GrantCount returns the number of company-voice rows
func (s *MemoryStore) GrantCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.grants)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
)
