package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/port"
	"github.com/aosagula/adm/internal/service"
	"github.com/gofiber/fiber/v3"
)

// AuditHandler exposes read access to the audit trail.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// Register sets up audit routes on a protected group.
func (h *AuditHandler) Register(api fiber.Router) {
	audit := api.Group("/audit", middleware.RequirePermission("audit.read"))
	audit.Get("/", h.List)
	audit.Get("/export", h.Export)
	audit.Get("/:id", h.Get)
}

func auditFilterFromQuery(c fiber.Ctx) (port.AuditFilter, error) {
	f := port.AuditFilter{
		EventType: c.Query("event_type"),
		Resource:  c.Query("resource"),
		UserID:    c.Query("user_id"),
	}
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("invalid start_date")
		}
		f.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("invalid end_date")
		}
		f.EndDate = &t
	}
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	return f, nil
}

// List returns audit rows newest-first, paginated.
func (h *AuditHandler) List(c fiber.Ctx) error {
	f, err := auditFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	page, err := h.audit.FindAll(c.Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// Export returns every matching row with pagination disabled.
func (h *AuditHandler) Export(c fiber.Ctx) error {
	f, err := auditFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	logs, err := h.audit.ExportLogs(c.Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"logs": logs, "count": len(logs)})
}

// Get returns one audit row.
func (h *AuditHandler) Get(c fiber.Ctx) error {
	log, err := h.audit.FindOne(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(log)
}
