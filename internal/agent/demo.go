package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/IBosman/zeeder-sub000/pkg/elevenlabs"
	"github.com/google/uuid"
)

// DemoBackend is an in-memory stand-in for the external API used in demo mode
type DemoBackend struct {
	mu        sync.RWMutex
	agents    map[string]*elevenlabs.Agent
	documents map[string]elevenlabs.Document
	voices    []elevenlabs.Voice
	numbers   []elevenlabs.PhoneNumber
}

// DemoAgent is a canned agent preloaded into the demo backend
type DemoAgent struct {
	ID           string
	Name         string
	SystemPrompt string
	FirstMessage string
	VoiceID      string
}

// DemoAgents are the agents every demo backend starts with
var DemoAgents = []DemoAgent{
	{
		ID:           "demo_agent_reception",
		Name:         "Reception",
		SystemPrompt: "You are the friendly receptionist of a dental practice. Book, move and cancel appointments.",
		FirstMessage: "Hello, thanks for calling. How can I help you today?",
		VoiceID:      "21m00Tcm4TlvDq8ikWAM",
	},
	{
		ID:           "demo_agent_support",
		Name:         "Support",
		SystemPrompt: "You answer product questions using the attached knowledge base. Escalate billing issues.",
		FirstMessage: "Hi! You're through to support. What can I do for you?",
		VoiceID:      "pNInz6obpgDQGcFmaJgB",
	},
}

// NewDemoBackend returns a backend preloaded with DemoAgents and a small voice catalog
func NewDemoBackend() *DemoBackend {
	b := &DemoBackend{
		agents:    make(map[string]*elevenlabs.Agent),
		documents: make(map[string]elevenlabs.Document),
		voices: []elevenlabs.Voice{
			{VoiceID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Category: "premade", Labels: map[string]string{"accent": "american", "gender": "female"}},
			{VoiceID: "pNInz6obpgDQGcFmaJgB", Name: "Adam", Category: "premade", Labels: map[string]string{"accent": "american", "gender": "male"}},
			{VoiceID: "EXAVITQu4vr4xnSDxMaL", Name: "Bella", Category: "premade", Labels: map[string]string{"accent": "american", "gender": "female"}},
		},
		numbers: []elevenlabs.PhoneNumber{
			{
				PhoneNumberID: "demo_phone_1",
				PhoneNumber:   "+15550100",
				Label:         "Main line",
				Provider:      "twilio",
				AssignedAgent: &elevenlabs.AssignedAgent{AgentID: "demo_agent_reception", AgentName: "Reception"},
			},
		},
	}

	for _, seed := range DemoAgents {
		u := Update{
			Name:          strPtr(seed.Name),
			SystemPrompt:  strPtr(seed.SystemPrompt),
			FirstMessage:  strPtr(seed.FirstMessage),
			VoiceID:       strPtr(seed.VoiceID),
			KnowledgeBase: &[]elevenlabs.KnowledgeBaseDocument{},
			Tools:         &[]json.RawMessage{},
		}
		a := u.ToPatch()
		a.AgentID = seed.ID
		b.agents[seed.ID] = a
	}
	return b
}

func (b *DemoBackend) GetAgent(_ context.Context, agentID string) (*elevenlabs.Agent, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	a, ok := b.agents[agentID]
	if !ok {
		return nil, notFound("agent")
	}
	return clone(a)
}

func (b *DemoBackend) UpdateAgent(_ context.Context, agentID string, patch *elevenlabs.Agent) (*elevenlabs.Agent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.agents[agentID]
	if !ok {
		return nil, notFound("agent")
	}
	p, err := clone(patch)
	if err != nil {
		return nil, err
	}
	Merge(a, p)
	return clone(a)
}

func (b *DemoBackend) CreateAgent(_ context.Context, agent *elevenlabs.Agent) (string, error) {
	a, err := clone(agent)
	if err != nil {
		return "", err
	}
	a.AgentID = "demo_agent_" + uuid.NewString()

	b.mu.Lock()
	b.agents[a.AgentID] = a
	b.mu.Unlock()
	return a.AgentID, nil
}

func (b *DemoBackend) DeleteAgent(_ context.Context, agentID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.agents[agentID]; !ok {
		return notFound("agent")
	}
	delete(b.agents, agentID)
	return nil
}

func (b *DemoBackend) ListVoices(context.Context) ([]elevenlabs.Voice, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]elevenlabs.Voice(nil), b.voices...), nil
}

func (b *DemoBackend) UploadDocument(_ context.Context, filename string, content io.Reader) (*elevenlabs.Document, error) {
	if _, err := io.Copy(io.Discard, content); err != nil {
		return nil, err
	}
	doc := elevenlabs.Document{ID: "demo_doc_" + uuid.NewString(), Name: filename}

	b.mu.Lock()
	b.documents[doc.ID] = doc
	b.mu.Unlock()
	return &doc, nil
}

func (b *DemoBackend) DeleteDocument(_ context.Context, documentID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.documents[documentID]; !ok {
		return notFound("document")
	}
	delete(b.documents, documentID)
	return nil
}

func (b *DemoBackend) ListPhoneNumbers(context.Context) ([]elevenlabs.PhoneNumber, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]elevenlabs.PhoneNumber(nil), b.numbers...), nil
}

// AgentIDs lists the agents currently held, sorted
func (b *DemoBackend) AgentIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.agents))
	for id := range b.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func notFound(what string) error {
	return &elevenlabs.APIError{StatusCode: 404, Body: fmt.Sprintf("%s not found", what)}
}

// clone deep-copies through JSON so callers never share nested pointers
func clone(a *elevenlabs.Agent) (*elevenlabs.Agent, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var out elevenlabs.Agent
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func strPtr(s string) *string { return &s }
