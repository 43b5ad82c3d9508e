package service

import (
	"context"
	"encoding/json"

	"github.com/IBosman/zeeder-sub000/internal/agent"
	"github.com/IBosman/zeeder-sub000/internal/apperr"
	"github.com/IBosman/zeeder-sub000/internal/auth"
	"github.com/IBosman/zeeder-sub000/internal/model"
	"github.com/IBosman/zeeder-sub000/internal/repository"
	"github.com/IBosman/zeeder-sub000/pkg/elevenlabs"
	"github.com/IBosman/zeeder-sub000/pkg/logger"
	"github.com/IBosman/zeeder-sub000/prometheus"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// VoiceCatalog keeps the local voice mirror in step with the backend
type VoiceCatalog struct {
	store   repository.Store
	backend agent.Backend
}

// NewVoiceCatalog creates the voice catalog service
func NewVoiceCatalog(store repository.Store, backend agent.Backend) *VoiceCatalog {
	return &VoiceCatalog{store: store, backend: backend}
}

// Sync replaces the local catalog with the backend's current one and
// returns the number of voices stored
func (v *VoiceCatalog) Sync(ctx context.Context) (int, error) {
	log := logger.Ctx(ctx)

	remote, err := v.backend.ListVoices(ctx)
	if err != nil {
		return 0, agent.UpstreamError(err)
	}

	voices := make([]model.Voice, 0, len(remote))
	for _, rv := range remote {
		if rv.VoiceID == "" {
			continue
		}
		voices = append(voices, toModelVoice(rv))
	}

	if err := v.store.ReplaceVoices(ctx, voices); err != nil {
		return 0, apperr.Internal("failed to store voices", err)
	}

	stored, err := v.store.ListVoices(ctx)
	if err != nil {
		return 0, apperr.Internal("failed to list voices", err)
	}
	prometheus.UpdateVoiceCatalog(len(stored))

	log.Info("Voice catalog synced",
		zap.Int("fetched", len(remote)),
		zap.Int("stored", len(stored)))
	return len(stored), nil
}

func toModelVoice(rv elevenlabs.Voice) model.Voice {
	voice := model.Voice{
		VoiceID:    rv.VoiceID,
		Name:       rv.Name,
		Category:   rv.Category,
		PreviewURL: rv.PreviewURL,
	}
	if len(rv.Labels) > 0 {
		if raw, err := json.Marshal(rv.Labels); err == nil {
			voice.Labels = datatypes.JSON(raw)
		}
	}
	return voice
}

// List returns the voices visible to identity: the full catalog for admins,
// the company's granted voices for everyone else
func (v *VoiceCatalog) List(ctx context.Context, identity auth.Identity) ([]model.Voice, error) {
	var (
		voices []model.Voice
		err    error
	)
	switch {
	case identity.IsAdmin():
		voices, err = v.store.ListVoices(ctx)
	case !identity.HasCompany():
		return []model.Voice{}, nil
	default:
		voices, err = v.store.ListVoicesByCompany(ctx, *identity.CompanyID)
	}
	if err != nil {
		return nil, apperr.Internal("failed to list voices", err)
	}
	if voices == nil {
		voices = []model.Voice{}
	}
	return voices, nil
}
