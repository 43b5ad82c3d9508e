package model

import (
	"time"
)

// Agent is the local tenancy and audit pointer to an external conversational agent.
// The agent configuration itself lives in the external system.
type Agent struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	ElevenLabsAgentID string    `json:"elevenlabsAgentId" gorm:"column:elevenlabs_agent_id;type:varchar(128);uniqueIndex;not null"`
	Name              string    `json:"name" gorm:"type:varchar(255)"`
	CompanyID         *uint     `json:"companyId" gorm:"index"`
	CreatedBy         *uint     `json:"createdBy"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
