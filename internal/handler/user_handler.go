package handler

import (
	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/service"
	"github.com/gofiber/fiber/v3"
)

// UserHandler handles user administration within an organization.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Register sets up user routes on a protected group.
func (h *UserHandler) Register(api fiber.Router) {
	users := api.Group("/users")
	users.Get("/", middleware.RequirePermission("users.read"), h.List)
	users.Get("/:id", middleware.RequirePermission("users.read"), h.Get)
	users.Patch("/:id", middleware.RequirePermission("users.update"), h.Update)
	users.Delete("/:id", middleware.RequirePermission("users.delete"), h.Remove)
	users.Post("/:id/roles", middleware.RequirePermission("users.update"), h.AssignRole)
	users.Delete("/:id/roles/:roleId", middleware.RequirePermission("users.update"), h.RemoveRole)
}

// List returns the organization's users with roles expanded.
func (h *UserHandler) List(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	users, err := h.users.List(c.Context(), p)
	if err != nil {
		return respondError(c, err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return c.JSON(fiber.Map{"users": users, "count": len(users)})
}

// Get returns one user.
func (h *UserHandler) Get(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	user, err := h.users.Get(c.Context(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// Update applies profile changes.
func (h *UserHandler) Update(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := h.users.Update(c.Context(), p, c.Params("id"), service.UpdateUserInput{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		AvatarURL: body.AvatarURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// Remove deactivates the account.
func (h *UserHandler) Remove(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	if err := h.users.Remove(c.Context(), p, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "user deactivated"})
}

// AssignRole grants a role to the user.
func (h *UserHandler) AssignRole(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	var body struct {
		RoleID string `json:"role_id" validate:"required,uuid4"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.users.AssignRole(c.Context(), p, c.Params("id"), body.RoleID); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "role assigned"})
}

// RemoveRole revokes a role from the user.
func (h *UserHandler) RemoveRole(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	if err := h.users.RemoveRole(c.Context(), p, c.Params("id"), c.Params("roleId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "role removed"})
}
