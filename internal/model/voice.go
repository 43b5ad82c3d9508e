package model

import (
	"time"

	"gorm.io/datatypes"
)

// Voice mirrors one entry of the external voice catalog
type Voice struct {
	VoiceID    string         `json:"voiceId" gorm:"primaryKey;type:varchar(128)"`
	Name       string         `json:"name" gorm:"type:varchar(255)"`
	Category   string         `json:"category" gorm:"type:varchar(64)"`
	Labels     datatypes.JSON `json:"labels,omitempty" gorm:"type:jsonb"`
	PreviewURL string         `json:"previewUrl,omitempty" gorm:"type:text"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// CompanyVoice grants a company the use of a voice
type CompanyVoice struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CompanyID uint      `json:"companyId" gorm:"uniqueIndex:idx_company_voice;not null"`
	VoiceID   string    `json:"voiceId" gorm:"uniqueIndex:idx_company_voice;type:varchar(128);not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
