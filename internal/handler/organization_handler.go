package handler

import (
	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/service"
	"github.com/gofiber/fiber/v3"
)

// OrganizationHandler exposes read access to tenant records.
type OrganizationHandler struct {
	organizations *service.OrganizationService
}

// NewOrganizationHandler creates a new organization handler.
func NewOrganizationHandler(organizations *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{organizations: organizations}
}

// Register sets up organization routes on a protected group.
func (h *OrganizationHandler) Register(api fiber.Router) {
	organizations := api.Group("/organizations")
	organizations.Get("/", middleware.RequirePermission("organizations.read"), h.List)
	organizations.Get("/:id", middleware.RequirePermission("organizations.read"), h.Get)
}

// List returns all organizations.
func (h *OrganizationHandler) List(c fiber.Ctx) error {
	organizations, err := h.organizations.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	if organizations == nil {
		organizations = []domain.Organization{}
	}
	return c.JSON(fiber.Map{"organizations": organizations, "count": len(organizations)})
}

// Get returns one organization.
func (h *OrganizationHandler) Get(c fiber.Ctx) error {
	organization, err := h.organizations.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(organization)
}
