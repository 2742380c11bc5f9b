package handler

import (
	"encoding/json"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/service"
	"github.com/gofiber/fiber/v3"
)

// PlatformHandler handles deployment platform CRUD.
type PlatformHandler struct {
	platforms *service.PlatformService
}

// NewPlatformHandler creates a new platform handler.
func NewPlatformHandler(platforms *service.PlatformService) *PlatformHandler {
	return &PlatformHandler{platforms: platforms}
}

// Register sets up platform routes on a protected group.
func (h *PlatformHandler) Register(api fiber.Router) {
	platforms := api.Group("/platforms")
	platforms.Get("/", middleware.RequirePermission("platforms.read"), h.List)
	platforms.Post("/", middleware.RequirePermission("platforms.create"), h.Create)
	platforms.Get("/:id", middleware.RequirePermission("platforms.read"), h.Get)
	platforms.Patch("/:id", middleware.RequirePermission("platforms.update"), h.Update)
	platforms.Delete("/:id", middleware.RequirePermission("platforms.delete"), h.Remove)
}

// List returns platforms, optionally filtered by provider.
func (h *PlatformHandler) List(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	platforms, err := h.platforms.List(c.Context(), p, c.Query("provider"))
	if err != nil {
		return respondError(c, err)
	}
	if platforms == nil {
		platforms = []domain.Platform{}
	}
	return c.JSON(fiber.Map{"platforms": platforms, "count": len(platforms)})
}

// Create registers a deployment platform.
func (h *PlatformHandler) Create(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		Name        string          `json:"name" validate:"required"`
		Provider    string          `json:"provider" validate:"required"`
		Description string          `json:"description"`
		Config      json.RawMessage `json:"config"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	platform, err := h.platforms.Create(c.Context(), p, service.PlatformInput{
		Name:        body.Name,
		Provider:    body.Provider,
		Description: body.Description,
		Config:      body.Config,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(platform)
}

// Get returns one platform.
func (h *PlatformHandler) Get(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	platform, err := h.platforms.Get(c.Context(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(platform)
}

// Update applies field changes.
func (h *PlatformHandler) Update(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		Name        string          `json:"name"`
		Provider    string          `json:"provider"`
		Description string          `json:"description"`
		Config      json.RawMessage `json:"config"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	platform, err := h.platforms.Update(c.Context(), p, c.Params("id"), service.PlatformInput{
		Name:        body.Name,
		Provider:    body.Provider,
		Description: body.Description,
		Config:      body.Config,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(platform)
}

// Remove deletes a platform.
func (h *PlatformHandler) Remove(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	if err := h.platforms.Remove(c.Context(), p, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "platform deleted"})
}
