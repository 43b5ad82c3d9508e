package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/IBosman/zeeder-sub000/prometheus"
	"go.uber.org/zap"
)

// APIKeyHeader authenticates every request
const APIKeyHeader = "xi-api-key"

// APIError is returned when the API answers with a non-2xx status
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("elevenlabs API error: %d %s", e.StatusCode, e.Body)
}

// Client talks to the ElevenLabs conversational-AI API
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates a new API client instance
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

// GetAgent fetches the full agent document
func (c *Client) GetAgent(ctx context.Context, agentID string) (*Agent, error) {
	var agent Agent
	path := "/v1/convai/agents/" + url.PathEscape(agentID)
	if err := c.doJSON(ctx, "get_agent", http.MethodGet, path, nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// UpdateAgent sends a partial update; nil fields in patch are left untouched upstream
func (c *Client) UpdateAgent(ctx context.Context, agentID string, patch *Agent) (*Agent, error) {
	var agent Agent
	path := "/v1/convai/agents/" + url.PathEscape(agentID)
	if err := c.doJSON(ctx, "update_agent", http.MethodPatch, path, patch, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// CreateAgent creates an agent and returns its external ID
func (c *Client) CreateAgent(ctx context.Context, agent *Agent) (string, error) {
	var resp CreateAgentResponse
	if err := c.doJSON(ctx, "create_agent", http.MethodPost, "/v1/convai/agents/create", agent, &resp); err != nil {
		return "", err
	}
	if resp.AgentID == "" {
		return "", fmt.Errorf("elevenlabs API returned no agent_id")
	}
	return resp.AgentID, nil
}

// DeleteAgent removes an agent upstream
func (c *Client) DeleteAgent(ctx context.Context, agentID string) error {
	path := "/v1/convai/agents/" + url.PathEscape(agentID)
	return c.doJSON(ctx, "delete_agent", http.MethodDelete, path, nil, nil)
}

// ListVoices returns the full voice catalog
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	var resp voicesResponse
	if err := c.doJSON(ctx, "list_voices", http.MethodGet, "/v1/voices", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Voices, nil
}

// UploadDocument stores a file in the knowledge base
func (c *Client) UploadDocument(ctx context.Context, filename string, content io.Reader) (*Document, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := writer.WriteField("name", filename); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	respBody, err := c.do(ctx, "upload_document", http.MethodPost, "/v1/convai/knowledge-base/file", writer.FormDataContentType(), body)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(respBody, &doc); err != nil {
		c.Logger.Error("Failed to parse upload response", zap.Error(err))
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = filename
	}
	return &doc, nil
}

// DeleteDocument removes a knowledge-base document
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	path := "/v1/convai/knowledge-base/" + url.PathEscape(documentID)
	return c.doJSON(ctx, "delete_document", http.MethodDelete, path, nil, nil)
}

// ListPhoneNumbers returns the phone numbers registered upstream
func (c *Client) ListPhoneNumbers(ctx context.Context) ([]PhoneNumber, error) {
	var numbers []PhoneNumber
	if err := c.doJSON(ctx, "list_phone_numbers", http.MethodGet, "/v1/convai/phone-numbers", nil, &numbers); err != nil {
		return nil, err
	}
	return numbers, nil
}

func (c *Client) doJSON(ctx context.Context, operation, method, path string, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	respBody, err := c.do(ctx, operation, method, path, contentType, body)
	if err != nil {
		return err
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		c.Logger.Error("Failed to parse API response",
			zap.String("operation", operation),
			zap.Error(err))
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, operation, method, path, contentType string, body io.Reader) ([]byte, error) {
	done := prometheus.TrackUpstreamCall(operation)

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		done(0)
		c.Logger.Error("Failed to create request", zap.Error(err))
		return nil, err
	}
	req.Header.Set(APIKeyHeader, c.APIKey)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.Logger.Debug("Making API call",
		zap.String("operation", operation),
		zap.String("method", method),
		zap.String("path", path))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		done(0)
		c.Logger.Error("API request failed", zap.String("operation", operation), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()
	done(resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.Logger.Error("Failed to read response body", zap.Error(err))
		return nil, err
	}

	if resp.StatusCode >= 400 {
		c.Logger.Warn("API request returned error status",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(respBody)))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: errorText(respBody)}
	}

	return respBody, nil
}

// errorText extracts the human-readable part of an error body
func errorText(body []byte) string {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.Detail) > 0 {
		var detail string
		if json.Unmarshal(errResp.Detail, &detail) == nil {
			return detail
		}
		var structured struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(errResp.Detail, &structured) == nil && structured.Message != "" {
			return structured.Message
		}
		return string(errResp.Detail)
	}
	return strings.TrimSpace(string(body))
}
