package handler

import (
	"github.com/IBosman/zeeder-sub000/internal/auth"
	"github.com/IBosman/zeeder-sub000/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the public, authenticated and admin routes on e.
// /metrics is mounted by the caller when enabled.
func (h *Handler) RegisterRoutes(e *echo.Echo, provider auth.Provider) {
	e.GET("/health", h.Health)

	e.POST("/auth/login", h.Login)
	e.POST("/auth/register", h.Register)

	api := e.Group("/api", middleware.Auth(provider))
	api.GET("/me", h.Me)
	api.GET("/voices", h.ListVoices)

	api.GET("/agents", h.ListAgents)
	api.POST("/agents", h.CreateAgent, middleware.RequireAdmin)
	api.GET("/agents/:id", h.GetAgent)
	api.PATCH("/agents/:id", h.UpdateAgent)
	api.DELETE("/agents/:id", h.DeleteAgent, middleware.RequireAdmin)
	api.POST("/agents/:id/knowledge-base", h.UploadKnowledgeBase)
	api.DELETE("/agents/:id/knowledge-base/:docId", h.DeleteKnowledgeBase)

	admin := api.Group("/admin", middleware.RequireAdmin)
	admin.GET("/users", h.ListUsers)
	admin.POST("/users", h.CreateUser)
	admin.PATCH("/users/:id", h.UpdateUser)
	admin.DELETE("/users/:id", h.DeleteUser)

	admin.GET("/companies", h.ListCompanies)
	admin.POST("/companies", h.CreateCompany)
	admin.GET("/companies/:id", h.GetCompany)
	admin.PATCH("/companies/:id", h.UpdateCompany)
	admin.DELETE("/companies/:id", h.DeleteCompany)

	admin.GET("/companies/:id/voices", h.ListCompanyVoices)
	admin.POST("/companies/:id/voices", h.AssignVoice)
	admin.DELETE("/companies/:id/voices/:voiceId", h.UnassignVoice)

	admin.GET("/companies/:id/users", h.ListCompanyUsers)
	admin.POST("/companies/:id/users", h.AssignUser)
	admin.DELETE("/companies/:id/users/:userId", h.RemoveUser)

	admin.GET("/companies/:id/agents", h.ListCompanyAgents)
	admin.POST("/companies/:id/agents", h.AssignAgent)
	admin.DELETE("/companies/:id/agents/:agentId", h.RemoveAgent)

	admin.POST("/voices/sync", h.SyncVoices)
	admin.GET("/phone-numbers", h.ListPhoneNumbers)
}
