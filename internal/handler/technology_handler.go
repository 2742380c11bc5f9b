package handler

import (
	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/service"
	"github.com/gofiber/fiber/v3"
)

// TechnologyHandler handles the technology catalog.
type TechnologyHandler struct {
	technologies *service.TechnologyService
}

// NewTechnologyHandler creates a new technology handler.
func NewTechnologyHandler(technologies *service.TechnologyService) *TechnologyHandler {
	return &TechnologyHandler{technologies: technologies}
}

// Register sets up technology routes on a protected group.
func (h *TechnologyHandler) Register(api fiber.Router) {
	technologies := api.Group("/technologies")
	technologies.Get("/", middleware.RequirePermission("technologies.read"), h.List)
	technologies.Post("/", middleware.RequirePermission("technologies.create"), h.Create)
	technologies.Get("/:id", middleware.RequirePermission("technologies.read"), h.Get)
	technologies.Patch("/:id", middleware.RequirePermission("technologies.update"), h.Update)
	technologies.Delete("/:id", middleware.RequirePermission("technologies.delete"), h.Remove)
}

// List returns the catalog, optionally filtered by category.
func (h *TechnologyHandler) List(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	technologies, err := h.technologies.List(c.Context(), p, c.Query("category"))
	if err != nil {
		return respondError(c, err)
	}
	if technologies == nil {
		technologies = []domain.Technology{}
	}
	return c.JSON(fiber.Map{"technologies": technologies, "count": len(technologies)})
}

// Create adds a catalog entry.
func (h *TechnologyHandler) Create(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		Name        string `json:"name" validate:"required"`
		Category    string `json:"category"`
		Version     string `json:"version"`
		Description string `json:"description"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tech, err := h.technologies.Create(c.Context(), p, service.TechnologyInput{
		Name:        body.Name,
		Category:    body.Category,
		Version:     body.Version,
		Description: body.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tech)
}

// Get returns one catalog entry.
func (h *TechnologyHandler) Get(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	tech, err := h.technologies.Get(c.Context(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tech)
}

// Update applies field changes.
func (h *TechnologyHandler) Update(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		Name        string `json:"name"`
		Category    string `json:"category"`
		Version     string `json:"version"`
		Description string `json:"description"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tech, err := h.technologies.Update(c.Context(), p, c.Params("id"), service.TechnologyInput{
		Name:        body.Name,
		Category:    body.Category,
		Version:     body.Version,
		Description: body.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tech)
}

// Remove deletes a catalog entry.
func (h *TechnologyHandler) Remove(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	if err := h.technologies.Remove(c.Context(), p, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "technology deleted"})
}
