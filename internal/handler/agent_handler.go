package handler

import (
	"encoding/json"
	"strconv"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/port"
	"github.com/aosagula/adm/internal/service"
	"github.com/gofiber/fiber/v3"
)

// AgentHandler handles agent CRUD, config updates and cloning.
type AgentHandler struct {
	agents *service.AgentService
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(agents *service.AgentService) *AgentHandler {
	return &AgentHandler{agents: agents}
}

// Register sets up agent routes on a protected group.
func (h *AgentHandler) Register(api fiber.Router) {
	agents := api.Group("/agents")
	agents.Get("/", middleware.RequirePermission("agents.read"), h.List)
	agents.Post("/", middleware.RequirePermission("agents.create"), h.Create)
	agents.Get("/project/:projectId", middleware.RequirePermission("agents.read"), h.ListByProject)
	agents.Get("/:id", middleware.RequirePermission("agents.read"), h.Get)
	agents.Patch("/:id", middleware.RequirePermission("agents.update"), h.Update)
	agents.Patch("/:id/config", middleware.RequirePermission("agents.update"), h.UpdateConfig)
	agents.Patch("/:id/toggle", middleware.RequirePermission("agents.update"), h.ToggleActive)
	agents.Get("/:id/versions", middleware.RequirePermission("agents.read"), h.VersionHistory)
	agents.Post("/:id/clone", middleware.RequirePermission("agents.create"), h.Clone)
	agents.Delete("/:id", middleware.RequirePermission("agents.delete"), h.Remove)
}

// List returns the organization's agents, paginated.
func (h *AgentHandler) List(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	f := port.AgentFilter{
		ProjectID: c.Query("project_id"),
		Search:    c.Query("search"),
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		f.IsActive = &active
	}
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}

	agents, total, err := h.agents.List(c.Context(), p, f)
	if err != nil {
		return respondError(c, err)
	}
	if agents == nil {
		agents = []domain.Agent{}
	}
	return c.JSON(fiber.Map{
		"agents": agents,
		"meta": fiber.Map{
			"total": total,
			"page":  f.Page,
			"limit": f.Limit,
		},
	})
}

// Create registers an agent under a project.
func (h *AgentHandler) Create(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		ProjectID   string          `json:"project_id" validate:"required,uuid4"`
		Name        string          `json:"name" validate:"required"`
		Description string          `json:"description"`
		Config      json.RawMessage `json:"config"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	agent, err := h.agents.Create(c.Context(), p, service.CreateAgentInput{
		ProjectID:   body.ProjectID,
		Name:        body.Name,
		Description: body.Description,
		Config:      body.Config,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(agent)
}

// ListByProject returns all agents of one project.
func (h *AgentHandler) ListByProject(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	agents, err := h.agents.ListByProject(c.Context(), p, c.Params("projectId"))
	if err != nil {
		return respondError(c, err)
	}
	if agents == nil {
		agents = []domain.Agent{}
	}
	return c.JSON(fiber.Map{"agents": agents, "count": len(agents)})
}

// Get returns one agent with prompts.
func (h *AgentHandler) Get(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	agent, err := h.agents.Get(c.Context(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(agent)
}

// Update applies field changes, merging config.
func (h *AgentHandler) Update(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Config      json.RawMessage `json:"config"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	agent, err := h.agents.Update(c.Context(), p, c.Params("id"), service.UpdateAgentInput{
		Name:        body.Name,
		Description: body.Description,
		Config:      body.Config,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(agent)
}

// UpdateConfig merges a config patch into the agent's config.
func (h *AgentHandler) UpdateConfig(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		Config json.RawMessage `json:"config" validate:"required"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	agent, err := h.agents.UpdateConfig(c.Context(), p, c.Params("id"), body.Config)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(agent)
}

// ToggleActive flips the agent's active flag.
func (h *AgentHandler) ToggleActive(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	agent, err := h.agents.ToggleActive(c.Context(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(agent)
}

// VersionHistory returns the agent's configuration versions.
func (h *AgentHandler) VersionHistory(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	versions, err := h.agents.VersionHistory(c.Context(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if versions == nil {
		versions = []domain.ConfigurationVersion{}
	}
	return c.JSON(fiber.Map{"versions": versions, "count": len(versions)})
}

// Clone copies the agent into another project.
func (h *AgentHandler) Clone(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		TargetProjectID string `json:"target_project_id" validate:"required,uuid4"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	clone, err := h.agents.Clone(c.Context(), p, c.Params("id"), body.TargetProjectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(clone)
}

// Remove hard-deletes the agent.
func (h *AgentHandler) Remove(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	if err := h.agents.Remove(c.Context(), p, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "agent deleted"})
}
