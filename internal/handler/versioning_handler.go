package handler

import (
	"encoding/json"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/service"
	"github.com/gofiber/fiber/v3"
)

// VersioningHandler exposes the configuration version history.
type VersioningHandler struct {
	versioning *service.VersioningService
}

// NewVersioningHandler creates a new versioning handler.
func NewVersioningHandler(versioning *service.VersioningService) *VersioningHandler {
	return &VersioningHandler{versioning: versioning}
}

// Register sets up versioning routes on a protected group.
func (h *VersioningHandler) Register(api fiber.Router) {
	v := api.Group("/versioning")
	v.Post("/", middleware.RequirePermission("versioning.create"), h.Create)
	v.Get("/project/:projectId", middleware.RequirePermission("versioning.read"), h.History)
	v.Get("/compare/:v1/:v2", middleware.RequirePermission("versioning.read"), h.Compare)
	v.Post("/restore/:versionId", middleware.RequirePermission("versioning.create"), h.Restore)
	v.Get("/:versionId", middleware.RequirePermission("versioning.read"), h.Get)
}

// Create appends a new configuration version.
func (h *VersioningHandler) Create(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		ProjectID         string          `json:"project_id" validate:"required,uuid4"`
		ConfigurationType string          `json:"configuration_type" validate:"required"`
		EntityID          string          `json:"entity_id" validate:"required,uuid4"`
		Content           json.RawMessage `json:"content" validate:"required"`
		ChangesSummary    string          `json:"changes_summary"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	version, err := h.versioning.CreateVersion(c.Context(), service.CreateVersionInput{
		ProjectID:         body.ProjectID,
		ConfigurationType: body.ConfigurationType,
		EntityID:          body.EntityID,
		Content:           body.Content,
		ChangesSummary:    body.ChangesSummary,
		CreatedBy:         p.UserID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(version)
}

// History returns a project's versions newest-first. An entity_id query
// narrows it to one entity.
func (h *VersioningHandler) History(c fiber.Ctx) error {
	versions, err := h.versioning.GetVersionHistory(c.Context(), c.Params("projectId"), c.Query("entity_id"))
	if err != nil {
		return respondError(c, err)
	}
	if versions == nil {
		versions = []domain.ConfigurationVersion{}
	}
	return c.JSON(fiber.Map{"versions": versions, "count": len(versions)})
}

// Get returns one version.
func (h *VersioningHandler) Get(c fiber.Ctx) error {
	version, err := h.versioning.GetVersion(c.Context(), c.Params("versionId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(version)
}

// Compare diffs two versions in the order given.
func (h *VersioningHandler) Compare(c fiber.Ctx) error {
	comparison, err := h.versioning.CompareVersions(c.Context(), c.Params("v1"), c.Params("v2"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comparison)
}

// Restore re-applies an old version as the next version.
func (h *VersioningHandler) Restore(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	version, err := h.versioning.RestoreVersion(c.Context(), c.Params("versionId"), p.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(version)
}
