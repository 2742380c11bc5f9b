package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/aosagula/adm/internal/adapter/store"
	"github.com/aosagula/adm/internal/handler"
	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/service"
	"github.com/aosagula/adm/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting Agent Directory Manager",
		"port", cfg.Port,
		"issuer", cfg.JWTIssuer,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	// ── Services ─────────────────────────────────────────────────────────
	auditService := service.NewAuditService(pgStore)
	versioningService := service.NewVersioningService(pgStore)
	authService := service.NewAuthService(pgStore, pgStore, auditService, cfg)
	projectService := service.NewProjectService(pgStore, versioningService, auditService)
	agentService := service.NewAgentService(pgStore, pgStore, versioningService, auditService)
	templateService := service.NewTemplateService(pgStore, auditService)
	technologyService := service.NewTechnologyService(pgStore, auditService)
	platformService := service.NewPlatformService(pgStore, auditService)
	tagService := service.NewTagService(pgStore, auditService)
	userService := service.NewUserService(pgStore, auditService)
	organizationService := service.NewOrganizationService(pgStore)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	}))

	// ── Public Routes ────────────────────────────────────────────────────
	public := app.Group("/api/v1")

	authHandler := handler.NewAuthHandler(authService)
	authHandler.Register(public)

	public.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── Protected Routes ─────────────────────────────────────────────────
	jwtMiddleware := middleware.JWTMiddleware(middleware.JWTConfig{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		ExpiresIn: time.Duration(cfg.JWTExpirationHours) * time.Hour,
	})

	api := app.Group("/api/v1", jwtMiddleware)

	authHandler.RegisterProtected(api)
	handler.NewOrganizationHandler(organizationService).Register(api)
	handler.NewUserHandler(userService).Register(api)
	handler.NewProjectHandler(projectService).Register(api)
	handler.NewAgentHandler(agentService).Register(api)
	handler.NewTemplateHandler(templateService).Register(api)
	handler.NewTechnologyHandler(technologyService).Register(api)
	handler.NewPlatformHandler(platformService).Register(api)
	handler.NewTagHandler(tagService).Register(api)
	handler.NewVersioningHandler(versioningService).Register(api)
	handler.NewAuditHandler(auditService).Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
