package handler

import (
	"net/http"

	"github.com/IBosman/zeeder-sub000/internal/agent"
	"github.com/IBosman/zeeder-sub000/internal/service"
	"github.com/labstack/echo/v4"
)

// ListAgents handles GET /api/agents
func (h *Handler) ListAgents(c echo.Context) error {
	agents, err := h.agents.List(c.Request().Context(), identity(c))
	if err != nil {
		return fail(c, err, "Failed to list agents")
	}
	return c.JSON(http.StatusOK, agents)
}

// GetAgent handles GET /api/agents/:id
func (h *Handler) GetAgent(c echo.Context) error {
	detail, err := h.agents.Get(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return fail(c, err, "Failed to load agent")
	}
	return c.JSON(http.StatusOK, detail)
}

// UpdateAgent handles PATCH /api/agents/:id
func (h *Handler) UpdateAgent(c echo.Context) error {
	var req agent.Update
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	detail, err := h.agents.Update(c.Request().Context(), identity(c), c.Param("id"), req)
	if err != nil {
		return fail(c, err, "Failed to update agent")
	}
	return c.JSON(http.StatusOK, detail)
}

// CreateAgent handles POST /api/agents
func (h *Handler) CreateAgent(c echo.Context) error {
	var req service.CreateAgentInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	detail, err := h.agents.Create(c.Request().Context(), identity(c), req)
	if err != nil {
		return fail(c, err, "Failed to create agent")
	}
	return c.JSON(http.StatusCreated, detail)
}

// DeleteAgent handles DELETE /api/agents/:id
func (h *Handler) DeleteAgent(c echo.Context) error {
	if err := h.agents.Delete(c.Request().Context(), identity(c), c.Param("id")); err != nil {
		return fail(c, err, "Failed to delete agent")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "agent deleted"})
}

// UploadKnowledgeBase handles POST /api/agents/:id/knowledge-base (multipart field "file")
func (h *Handler) UploadKnowledgeBase(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "could not read uploaded file")
	}
	defer file.Close()

	doc, err := h.agents.AddDocument(c.Request().Context(), identity(c), c.Param("id"), fileHeader.Filename, file)
	if err != nil {
		return fail(c, err, "Failed to upload knowledge base document")
	}
	return c.JSON(http.StatusCreated, doc)
}

// DeleteKnowledgeBase handles DELETE /api/agents/:id/knowledge-base/:docId
func (h *Handler) DeleteKnowledgeBase(c echo.Context) error {
	if err := h.agents.RemoveDocument(c.Request().Context(), identity(c), c.Param("id"), c.Param("docId")); err != nil {
		return fail(c, err, "Failed to delete knowledge base document")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "document deleted"})
}

// ListPhoneNumbers handles GET /api/admin/phone-numbers
func (h *Handler) ListPhoneNumbers(c echo.Context) error {
	numbers, err := h.agents.PhoneNumbers(c.Request().Context())
	if err != nil {
		return fail(c, err, "Failed to list phone numbers")
	}
	return c.JSON(http.StatusOK, numbers)
}
