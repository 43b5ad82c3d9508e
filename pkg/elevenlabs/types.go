package elevenlabs

import "encoding/json"

// Agent is the external agent document. Pointer fields are omitted when nil,
// so the same types serve as a partial-update body.
type Agent struct {
	AgentID            string              `json:"agent_id,omitempty"`
	Name               *string             `json:"name,omitempty"`
	ConversationConfig *ConversationConfig `json:"conversation_config,omitempty"`
	Metadata           json.RawMessage     `json:"metadata,omitempty"`
}

// ConversationConfig is the nested configuration of an agent
type ConversationConfig struct {
	Agent *AgentConfig `json:"agent,omitempty"`
	TTS   *TTSConfig   `json:"tts,omitempty"`
}

// AgentConfig holds the conversational behaviour of an agent
type AgentConfig struct {
	FirstMessage *string       `json:"first_message,omitempty"`
	Language     *string       `json:"language,omitempty"`
	Prompt       *PromptConfig `json:"prompt,omitempty"`
}

// PromptConfig holds the prompt, knowledge base and tools of an agent
type PromptConfig struct {
	Prompt        *string                  `json:"prompt,omitempty"`
	LLM           *string                  `json:"llm,omitempty"`
	KnowledgeBase *[]KnowledgeBaseDocument `json:"knowledge_base,omitempty"`
	Tools         *[]json.RawMessage       `json:"tools,omitempty"`
}

// TTSConfig holds the voice settings of an agent
type TTSConfig struct {
	VoiceID *string `json:"voice_id,omitempty"`
}

// KnowledgeBaseDocument references a document attached to an agent
type KnowledgeBaseDocument struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	UsageMode string `json:"usage_mode,omitempty"`
}

// CreateAgentResponse is returned by the agent create endpoint
type CreateAgentResponse struct {
	AgentID string `json:"agent_id"`
}

// Voice is one entry of the external voice catalog
type Voice struct {
	VoiceID    string            `json:"voice_id"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	Labels     map[string]string `json:"labels,omitempty"`
	PreviewURL string            `json:"preview_url,omitempty"`
}

type voicesResponse struct {
	Voices []Voice `json:"voices"`
}

// Document is a knowledge-base document stored upstream
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PhoneNumber is a telephony number registered upstream
type PhoneNumber struct {
	PhoneNumberID string         `json:"phone_number_id"`
	PhoneNumber   string         `json:"phone_number"`
	Label         string         `json:"label"`
	Provider      string         `json:"provider"`
	AssignedAgent *AssignedAgent `json:"assigned_agent,omitempty"`
}

// AssignedAgent is the agent answering a phone number
type AssignedAgent struct {
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"`
}

// ErrorResponse is the error body returned by the API
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}
