// Package agent proxies agent configuration to the conversational-AI backend
// and translates between the flat dashboard shape and the nested external one.
package agent

import (
	"context"
	"errors"
	"io"

	"github.com/IBosman/zeeder-sub000/internal/apperr"
	"github.com/IBosman/zeeder-sub000/pkg/elevenlabs"
)

// Backend is the external system that owns agent configuration
type Backend interface {
	GetAgent(ctx context.Context, agentID string) (*elevenlabs.Agent, error)
	UpdateAgent(ctx context.Context, agentID string, patch *elevenlabs.Agent) (*elevenlabs.Agent, error)
	CreateAgent(ctx context.Context, agent *elevenlabs.Agent) (string, error)
	DeleteAgent(ctx context.Context, agentID string) error
	ListVoices(ctx context.Context) ([]elevenlabs.Voice, error)
	UploadDocument(ctx context.Context, filename string, content io.Reader) (*elevenlabs.Document, error)
	DeleteDocument(ctx context.Context, documentID string) error
	ListPhoneNumbers(ctx context.Context) ([]elevenlabs.PhoneNumber, error)
}

var _ Backend = (*elevenlabs.Client)(nil)

// UpstreamError converts a backend failure into an API error. Upstream client
// errors keep their status; transport failures and 5xx become 502.
func UpstreamError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Upstream(0, "request timed out", err)
	}
	var apiErr *elevenlabs.APIError
	if errors.As(err, &apiErr) {
		return apperr.Upstream(apiErr.StatusCode, apiErr.Body, err)
	}
	return apperr.Upstream(0, err.Error(), err)
}
