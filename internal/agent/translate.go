package agent

import (
	"encoding/json"

	"github.com/IBosman/zeeder-sub000/internal/model"
	"github.com/IBosman/zeeder-sub000/pkg/elevenlabs"
)

// Detail is the flat agent view served to the dashboard
type Detail struct {
	ID                uint                               `json:"id"`
	ElevenLabsAgentID string                             `json:"elevenlabsAgentId"`
	Name              string                             `json:"name"`
	SystemPrompt      string                             `json:"systemPrompt"`
	FirstMessage      string                             `json:"firstMessage"`
	VoiceID           string                             `json:"voiceId"`
	Language          string                             `json:"language,omitempty"`
	KnowledgeBase     []elevenlabs.KnowledgeBaseDocument `json:"knowledgeBase"`
	Tools             []json.RawMessage                  `json:"tools"`
	CompanyID         *uint                              `json:"companyId"`
	CreatedBy         *uint                              `json:"createdBy"`
}

// Update is a partial write. Nil fields are not sent upstream.
type Update struct {
	Name          *string                             `json:"name"`
	SystemPrompt  *string                             `json:"systemPrompt"`
	FirstMessage  *string                             `json:"firstMessage"`
	VoiceID       *string                             `json:"voiceId"`
	Language      *string                             `json:"language"`
	KnowledgeBase *[]elevenlabs.KnowledgeBaseDocument `json:"knowledgeBase"`
	Tools         *[]json.RawMessage                  `json:"tools"`
}

// Empty reports whether the update carries no field at all
func (u Update) Empty() bool {
	return u.Name == nil && u.SystemPrompt == nil && u.FirstMessage == nil &&
		u.VoiceID == nil && u.Language == nil && u.KnowledgeBase == nil && u.Tools == nil
}

// ToPatch builds the nested payload holding only the fields set in u
func (u Update) ToPatch() *elevenlabs.Agent {
	patch := &elevenlabs.Agent{Name: u.Name}

	var prompt *elevenlabs.PromptConfig
	if u.SystemPrompt != nil || u.KnowledgeBase != nil || u.Tools != nil {
		prompt = &elevenlabs.PromptConfig{
			Prompt:        u.SystemPrompt,
			KnowledgeBase: u.KnowledgeBase,
			Tools:         u.Tools,
		}
	}

	var agentCfg *elevenlabs.AgentConfig
	if prompt != nil || u.FirstMessage != nil || u.Language != nil {
		agentCfg = &elevenlabs.AgentConfig{
			FirstMessage: u.FirstMessage,
			Language:     u.Language,
			Prompt:       prompt,
		}
	}

	var tts *elevenlabs.TTSConfig
	if u.VoiceID != nil {
		tts = &elevenlabs.TTSConfig{VoiceID: u.VoiceID}
	}

	if agentCfg != nil || tts != nil {
		patch.ConversationConfig = &elevenlabs.ConversationConfig{Agent: agentCfg, TTS: tts}
	}
	return patch
}

// Flatten merges the external document with the local tenancy pointer
func Flatten(local *model.Agent, remote *elevenlabs.Agent) Detail {
	d := Detail{
		ID:                local.ID,
		ElevenLabsAgentID: local.ElevenLabsAgentID,
		Name:              local.Name,
		KnowledgeBase:     []elevenlabs.KnowledgeBaseDocument{},
		Tools:             []json.RawMessage{},
		CompanyID:         local.CompanyID,
		CreatedBy:         local.CreatedBy,
	}
	if remote == nil {
		return d
	}
	if remote.Name != nil && *remote.Name != "" {
		d.Name = *remote.Name
	}

	cfg := remote.ConversationConfig
	if cfg == nil {
		return d
	}
	if cfg.TTS != nil {
		d.VoiceID = deref(cfg.TTS.VoiceID)
	}
	if cfg.Agent != nil {
		d.FirstMessage = deref(cfg.Agent.FirstMessage)
		d.Language = deref(cfg.Agent.Language)
		if p := cfg.Agent.Prompt; p != nil {
			d.SystemPrompt = deref(p.Prompt)
			if p.KnowledgeBase != nil {
				d.KnowledgeBase = *p.KnowledgeBase
			}
			if p.Tools != nil {
				d.Tools = *p.Tools
			}
		}
	}
	return d
}

// KnowledgeBase returns the documents attached to remote
func KnowledgeBase(remote *elevenlabs.Agent) []elevenlabs.KnowledgeBaseDocument {
	if remote == nil || remote.ConversationConfig == nil || remote.ConversationConfig.Agent == nil ||
		remote.ConversationConfig.Agent.Prompt == nil || remote.ConversationConfig.Agent.Prompt.KnowledgeBase == nil {
		return nil
	}
	return *remote.ConversationConfig.Agent.Prompt.KnowledgeBase
}

// Merge applies the non-nil fields of patch onto dst
func Merge(dst, patch *elevenlabs.Agent) {
	if patch == nil {
		return
	}
	if patch.Name != nil {
		dst.Name = patch.Name
	}
	if patch.ConversationConfig == nil {
		return
	}
	if dst.ConversationConfig == nil {
		dst.ConversationConfig = &elevenlabs.ConversationConfig{}
	}
	src, out := patch.ConversationConfig, dst.ConversationConfig

	if src.TTS != nil && src.TTS.VoiceID != nil {
		if out.TTS == nil {
			out.TTS = &elevenlabs.TTSConfig{}
		}
		out.TTS.VoiceID = src.TTS.VoiceID
	}

	if src.Agent == nil {
		return
	}
	if out.Agent == nil {
		out.Agent = &elevenlabs.AgentConfig{}
	}
	if src.Agent.FirstMessage != nil {
		out.Agent.FirstMessage = src.Agent.FirstMessage
	}
	if src.Agent.Language != nil {
		out.Agent.Language = src.Agent.Language
	}
	if p := src.Agent.Prompt; p != nil {
		if out.Agent.Prompt == nil {
			out.Agent.Prompt = &elevenlabs.PromptConfig{}
		}
		if p.Prompt != nil {
			out.Agent.Prompt.Prompt = p.Prompt
		}
		if p.LLM != nil {
			out.Agent.Prompt.LLM = p.LLM
		}
		if p.KnowledgeBase != nil {
			out.Agent.Prompt.KnowledgeBase = p.KnowledgeBase
		}
		if p.Tools != nil {
			out.Agent.Prompt.Tools = p.Tools
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
