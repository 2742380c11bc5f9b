package handler

import (
	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/service"
	"github.com/gofiber/fiber/v3"
)

// TagHandler handles organization tag CRUD.
type TagHandler struct {
	tags *service.TagService
}

// NewTagHandler creates a new tag handler.
func NewTagHandler(tags *service.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

// Register sets up tag routes on a protected group.
func (h *TagHandler) Register(api fiber.Router) {
	tags := api.Group("/tags")
	tags.Get("/", middleware.RequirePermission("tags.read"), h.List)
	tags.Post("/", middleware.RequirePermission("tags.create"), h.Create)
	tags.Get("/:id", middleware.RequirePermission("tags.read"), h.Get)
	tags.Patch("/:id", middleware.RequirePermission("tags.update"), h.Update)
	tags.Delete("/:id", middleware.RequirePermission("tags.delete"), h.Remove)
}

// List returns tags, optionally filtered to system or custom tags.
func (h *TagHandler) List(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var isSystem *bool
	if v := c.Query("is_system"); v != "" {
		system := v == "true"
		isSystem = &system
	}

	tags, err := h.tags.List(c.Context(), p, isSystem)
	if err != nil {
		return respondError(c, err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return c.JSON(fiber.Map{"tags": tags, "count": len(tags)})
}

// Create adds a tag.
func (h *TagHandler) Create(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		Name        string `json:"name" validate:"required"`
		Color       string `json:"color" validate:"omitempty,hexcolor"`
		Description string `json:"description"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tag, err := h.tags.Create(c.Context(), p, service.TagInput{
		Name:        body.Name,
		Color:       body.Color,
		Description: body.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

// Get returns one tag.
func (h *TagHandler) Get(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	tag, err := h.tags.Get(c.Context(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tag)
}

// Update applies field changes.
func (h *TagHandler) Update(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		Name        string `json:"name"`
		Color       string `json:"color" validate:"omitempty,hexcolor"`
		Description string `json:"description"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tag, err := h.tags.Update(c.Context(), p, c.Params("id"), service.TagInput{
		Name:        body.Name,
		Color:       body.Color,
		Description: body.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tag)
}

// Remove deletes a tag; system tags refuse.
func (h *TagHandler) Remove(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	if err := h.tags.Remove(c.Context(), p, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "tag deleted"})
}
