package handler

import (
	"net/http"

	"github.com/IBosman/zeeder-sub000/internal/service"
	"github.com/labstack/echo/v4"
)

// ListUsers handles GET /api/admin/users
func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.directory.ListUsers(c.Request().Context())
	if err != nil {
		return fail(c, err, "Failed to list users")
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /api/admin/users
func (h *Handler) CreateUser(c echo.Context) error {
	var req service.CreateUserInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	user, err := h.directory.CreateUser(c.Request().Context(), req)
	if err != nil {
		return fail(c, err, "Failed to create user")
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser handles PATCH /api/admin/users/:id. companyId 0 unassigns the user.
func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid user ID")
	}
	var req service.UpdateUserInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	user, err := h.directory.UpdateUser(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err, "Failed to update user")
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/admin/users/:id
func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid user ID")
	}
	if err := h.directory.DeleteUser(c.Request().Context(), identity(c), id); err != nil {
		return fail(c, err, "Failed to delete user")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

// ListCompanies handles GET /api/admin/companies
func (h *Handler) ListCompanies(c echo.Context) error {
	companies, err := h.directory.ListCompanies(c.Request().Context())
	if err != nil {
		return fail(c, err, "Failed to list companies")
	}
	return c.JSON(http.StatusOK, companies)
}

// GetCompany handles GET /api/admin/companies/:id
func (h *Handler) GetCompany(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid company ID")
	}
	company, err := h.directory.GetCompany(c.Request().Context(), id)
	if err != nil {
		return fail(c, err, "Failed to load company")
	}
	return c.JSON(http.StatusOK, company)
}

// CreateCompany handles POST /api/admin/companies
func (h *Handler) CreateCompany(c echo.Context) error {
	var req service.CompanyInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	company, err := h.directory.CreateCompany(c.Request().Context(), req)
	if err != nil {
		return fail(c, err, "Failed to create company")
	}
	return c.JSON(http.StatusCreated, company)
}

// UpdateCompany handles PATCH /api/admin/companies/:id
func (h *Handler) UpdateCompany(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid company ID")
	}
	var req service.CompanyInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	company, err := h.directory.UpdateCompany(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err, "Failed to update company")
	}
	return c.JSON(http.StatusOK, company)
}

// DeleteCompany handles DELETE /api/admin/companies/:id
func (h *Handler) DeleteCompany(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid company ID")
	}
	if err := h.directory.DeleteCompany(c.Request().Context(), id); err != nil {
		return fail(c, err, "Failed to delete company")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "company deleted"})
}
