package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/IBosman/zeeder-sub000/internal/apperr"
	"github.com/labstack/echo/v4"
)

// ListCompanyVoices handles GET /api/admin/companies/:id/voices
func (h *Handler) ListCompanyVoices(c echo.Context) error {
	companyID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid company ID")
	}
	voices, err := h.assignments.CompanyVoices(c.Request().Context(), companyID)
	if err != nil {
		return fail(c, err, "Failed to list company voices")
	}
	return c.JSON(http.StatusOK, voices)
}

// AssignVoice handles POST /api/admin/companies/:id/voices
func (h *Handler) AssignVoice(c echo.Context) error {
	companyID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid company ID")
	}
	var req struct {
		VoiceID string `json:"voiceId"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	cv, err := h.assignments.AssignVoice(c.Request().Context(), companyID, req.VoiceID)
	if err != nil {
		return fail(c, err, "Failed to assign voice")
	}
	return c.JSON(http.StatusCreated, cv)
}

// UnassignVoice handles DELETE /api/admin/companies/:id/voices/:voiceId
func (h *Handler) UnassignVoice(c echo.Context) error {
	companyID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid company ID")
	}
	if err := h.assignments.UnassignVoice(c.Request().Context(), companyID, c.Param("voiceId")); err != nil {
		return fail(c, err, "Failed to unassign voice")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "voice unassigned"})
}

// ListCompanyUsers handles GET /api/admin/companies/:id/users
func (h *Handler) ListCompanyUsers(c echo.Context) error {
	companyID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid company ID")
	}
	users, err := h.assignments.CompanyUsers(c.Request().Context(), companyID)
	if err != nil {
		return fail(c, err, "Failed to list company users")
	}
	return c.JSON(http.StatusOK, users)
}

// AssignUser handles POST /api/admin/companies/:id/users
func (h *Handler) AssignUser(c echo.Context) error {
	companyID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid company ID")
	}
	var req struct {
		UserID uint `json:"userId"`
	}
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return badRequest(c, "userId is required")
	}

	user, err := h.assignments.AssignUser(c.Request().Context(), companyID, req.UserID)
	if err != nil {
		return fail(c, err, "Failed to assign user")
	}
	return c.JSON(http.StatusOK, user)
}

// RemoveUser handles DELETE /api/admin/companies/:id/users/:userId
func (h *Handler) RemoveUser(c echo.Context) error {
	companyID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid company ID")
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return fail(c, err, "Invalid user ID")
	}
	if err := h.assignments.RemoveUser(c.Request().Context(), companyID, userID); err != nil {
		return fail(c, err, "Failed to remove user")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user removed from company"})
}

// ListCompanyAgents handles GET /api/admin/companies/:id/agents
func (h *Handler) ListCompanyAgents(c echo.Context) error {
	companyID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid company ID")
	}
	agents, err := h.assignments.CompanyAgents(c.Request().Context(), companyID)
	if err != nil {
		return fail(c, err, "Failed to list company agents")
	}
	return c.JSON(http.StatusOK, agents)
}

// AssignAgent handles POST /api/admin/companies/:id/agents. The agent is
// referenced by external ID (string) or by local numeric ID (integer).
func (h *Handler) AssignAgent(c echo.Context) error {
	companyID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid company ID")
	}
	var req struct {
		AgentID  json.RawMessage `json:"agentId"`
		Fallback string          `json:"elevenlabsAgentId"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	ref, err := agentRef(req.AgentID, req.Fallback)
	if err != nil {
		return fail(c, err, "Invalid agent reference")
	}

	agent, err := h.assignments.AssignAgent(c.Request().Context(), companyID, ref)
	if err != nil {
		return fail(c, err, "Failed to assign agent")
	}
	return c.JSON(http.StatusOK, agent)
}

// agentRef accepts a JSON string or a non-negative JSON integer
func agentRef(raw json.RawMessage, fallback string) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if fallback == "" {
			return "", apperr.BadRequest("agentId is required")
		}
		return fallback, nil
	}

	if trimmed[0] == '"' {
		var ref string
		if err := json.Unmarshal(trimmed, &ref); err != nil || ref == "" {
			return "", apperr.BadRequest("agentId is required")
		}
		return ref, nil
	}

	if _, err := strconv.ParseUint(string(trimmed), 10, 64); err != nil {
		return "", apperr.BadRequest("agentId must be a string or an integer ID")
	}
	return string(trimmed), nil
}

// RemoveAgent handles DELETE /api/admin/companies/:id/agents/:agentId
func (h *Handler) RemoveAgent(c echo.Context) error {
	companyID, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid company ID")
	}

	agent, err := h.assignments.RemoveAgent(c.Request().Context(), companyID, c.Param("agentId"))
	if err != nil {
		return fail(c, err, "Failed to remove agent")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "agent removed from company", "agent": agent})
}
