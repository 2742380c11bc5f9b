package handler

import (
	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/service"
	"github.com/gofiber/fiber/v3"
)

// AuthHandler handles registration, login and token refresh.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register sets up the public auth routes.
func (h *AuthHandler) Register(api fiber.Router) {
	auth := api.Group("/auth")
	auth.Post("/register", h.SignUp)
	auth.Post("/login", h.Login)
	auth.Post("/refresh", h.Refresh)
}

// RegisterProtected sets up auth routes that need a valid token.
func (h *AuthHandler) RegisterProtected(api fiber.Router) {
	auth := api.Group("/auth")
	auth.Post("/logout", h.Logout)
	auth.Get("/profile", h.Profile)
}

// SignUp creates a new account.
func (h *AuthHandler) SignUp(c fiber.Ctx) error {
	var body struct {
		Email          string `json:"email" validate:"required,email"`
		Password       string `json:"password" validate:"required,min=8"`
		FirstName      string `json:"first_name" validate:"required"`
		LastName       string `json:"last_name" validate:"required"`
		OrganizationID string `json:"organization_id" validate:"required,uuid4"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	pair, err := h.auth.Register(c.Context(), service.RegisterInput{
		Email:          body.Email,
		Password:       body.Password,
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		OrganizationID: body.OrganizationID,
		IPAddress:      c.IP(),
		UserAgent:      c.Get("User-Agent"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(pair)
}

// Login exchanges credentials for a token pair.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	pair, err := h.auth.Login(c.Context(), body.Email, body.Password, c.IP(), c.Get("User-Agent"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pair)
}

// Refresh exchanges a refresh token for a fresh token pair.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := parseBody(c, &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	pair, err := h.auth.Refresh(c.Context(), body.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pair)
}

// Logout records the logout; tokens are stateless.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	if p == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	h.auth.Logout(c.Context(), p, c.IP(), c.Get("User-Agent"))
	return c.JSON(fiber.Map{"message": "logged out"})
}

// Profile returns the authenticated user.
func (h *AuthHandler) Profile(c fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	if p == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	user, err := h.auth.Profile(c.Context(), p.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
