package handler

import (
	"encoding/json"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/port"
	"github.com/aosagula/adm/internal/service"
	"github.com/gofiber/fiber/v3"
)

// TemplateHandler handles project template CRUD.
type TemplateHandler struct {
	templates *service.TemplateService
}

// NewTemplateHandler creates a new template handler.
func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// Register sets up template routes on a protected group.
func (h *TemplateHandler) Register(api fiber.Router) {
	templates := api.Group("/templates")
	templates.Get("/", middleware.RequirePermission("templates.read"), h.List)
	templates.Post("/", middleware.RequirePermission("templates.create"), h.Create)
	templates.Get("/:id", middleware.RequirePermission("templates.read"), h.Get)
	templates.Patch("/:id", middleware.RequirePermission("templates.update"), h.Update)
	templates.Delete("/:id", middleware.RequirePermission("templates.delete"), h.Remove)
}

// List returns visible templates.
func (h *TemplateHandler) List(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	f := port.TemplateFilter{Category: c.Query("category")}
	if v := c.Query("is_public"); v != "" {
		public := v == "true"
		f.IsPublic = &public
	}

	templates, err := h.templates.List(c.Context(), p, f)
	if err != nil {
		return respondError(c, err)
	}
	if templates == nil {
		templates = []domain.Template{}
	}
	return c.JSON(fiber.Map{"templates": templates, "count": len(templates)})
}

// Create creates a template owned by the caller.
func (h *TemplateHandler) Create(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		Name        string          `json:"name" validate:"required"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		BaseConfig  json.RawMessage `json:"base_config"`
		IsPublic    bool            `json:"is_public"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	template, err := h.templates.Create(c.Context(), p, service.CreateTemplateInput{
		Name:        body.Name,
		Description: body.Description,
		Category:    body.Category,
		BaseConfig:  body.BaseConfig,
		IsPublic:    body.IsPublic,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(template)
}

// Get returns one visible template.
func (h *TemplateHandler) Get(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	template, err := h.templates.Get(c.Context(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(template)
}

// Update applies field changes; creator-only.
func (h *TemplateHandler) Update(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		BaseConfig  json.RawMessage `json:"base_config"`
		IsPublic    *bool           `json:"is_public"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	template, err := h.templates.Update(c.Context(), p, c.Params("id"), service.UpdateTemplateInput{
		Name:        body.Name,
		Description: body.Description,
		Category:    body.Category,
		BaseConfig:  body.BaseConfig,
		IsPublic:    body.IsPublic,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(template)
}

// Remove deletes a template; creator-only.
func (h *TemplateHandler) Remove(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	if err := h.templates.Remove(c.Context(), p, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "template deleted"})
}
