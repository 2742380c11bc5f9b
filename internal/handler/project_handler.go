package handler

import (
	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/port"
	"github.com/aosagula/adm/internal/service"
	"github.com/gofiber/fiber/v3"
)

// ProjectHandler handles project CRUD and membership.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Register sets up project routes on a protected group.
func (h *ProjectHandler) Register(api fiber.Router) {
	projects := api.Group("/projects")
	projects.Get("/", middleware.RequirePermission("projects.read"), h.List)
	projects.Post("/", middleware.RequirePermission("projects.create"), h.Create)
	projects.Get("/:id", middleware.RequirePermission("projects.read"), h.Get)
	projects.Patch("/:id", middleware.RequirePermission("projects.update"), h.Update)
	projects.Patch("/:id/status", middleware.RequirePermission("projects.update"), h.UpdateStatus)
	projects.Delete("/:id", middleware.RequirePermission("projects.delete"), h.Archive)
	projects.Post("/:id/members", middleware.RequirePermission("projects.update"), h.AddMember)
	projects.Delete("/:id/members/:userId", middleware.RequirePermission("projects.update"), h.RemoveMember)
}

// List returns the organization's projects.
func (h *ProjectHandler) List(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	projects, err := h.projects.List(c.Context(), p, port.ProjectFilter{
		Status:     c.Query("status"),
		Visibility: c.Query("visibility"),
		OwnerID:    c.Query("owner_id"),
	})
	if err != nil {
		return respondError(c, err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return c.JSON(fiber.Map{"projects": projects, "count": len(projects)})
}

// Create creates a project owned by the caller.
func (h *ProjectHandler) Create(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		Name            string `json:"name" validate:"required"`
		Slug            string `json:"slug"`
		Description     string `json:"description"`
		LongDescription string `json:"long_description"`
		Visibility      string `json:"visibility" validate:"omitempty,oneof=PRIVATE INTERNAL PUBLIC"`
		TemplateID      string `json:"template_id" validate:"omitempty,uuid4"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	project, err := h.projects.Create(c.Context(), p, service.CreateProjectInput{
		Name:            body.Name,
		Slug:            body.Slug,
		Description:     body.Description,
		LongDescription: body.LongDescription,
		Visibility:      body.Visibility,
		TemplateID:      body.TemplateID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// Get returns one project with members.
func (h *ProjectHandler) Get(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	project, err := h.projects.Get(c.Context(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// Update applies field changes.
func (h *ProjectHandler) Update(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		Name            string `json:"name"`
		Description     string `json:"description"`
		LongDescription string `json:"long_description"`
		Visibility      string `json:"visibility" validate:"omitempty,oneof=PRIVATE INTERNAL PUBLIC"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	project, err := h.projects.Update(c.Context(), p, c.Params("id"), service.UpdateProjectInput{
		Name:            body.Name,
		Description:     body.Description,
		LongDescription: body.LongDescription,
		Visibility:      body.Visibility,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// UpdateStatus moves the project through its lifecycle.
func (h *ProjectHandler) UpdateStatus(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		Status string `json:"status" validate:"required,oneof=DEVELOPMENT TESTING PRODUCTION ARCHIVED"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	project, err := h.projects.UpdateStatus(c.Context(), p, c.Params("id"), body.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// Archive marks the project ARCHIVED; the row and its history stay.
func (h *ProjectHandler) Archive(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	if err := h.projects.Archive(c.Context(), p, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "project archived"})
}

// AddMember adds a user to the project.
func (h *ProjectHandler) AddMember(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		UserID string `json:"user_id" validate:"required,uuid4"`
		Role   string `json:"role" validate:"required,oneof=OWNER EDITOR VIEWER"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	member, err := h.projects.AddMember(c.Context(), p, c.Params("id"), body.UserID, body.Role)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// RemoveMember removes a user from the project.
func (h *ProjectHandler) RemoveMember(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	if err := h.projects.RemoveMember(c.Context(), p, c.Params("id"), c.Params("userId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "member removed"})
}
