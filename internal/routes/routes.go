package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/gyansetu/internal/config"
	"github.com/example/gyansetu/internal/handlers"
	"github.com/example/gyansetu/internal/live"
	"github.com/example/gyansetu/internal/middleware"
	"github.com/example/gyansetu/internal/models"
	"github.com/example/gyansetu/internal/services"
	"github.com/example/gyansetu/internal/storage"
)

// Deps carries everything the route tree needs.
type Deps struct {
	Store    storage.Store
	Sessions *services.Sessions
	Accounts *services.Accounts
	Payments *services.Payments
	Hub      *live.Hub
	Cfg      *config.Config
	Logger   *zap.Logger
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Sessions, deps.Cfg)
	paymentHandler := handlers.NewPaymentHandler(deps.Payments)
	studentHandler := handlers.NewStudentHandler(deps.Store, deps.Payments, deps.Cfg, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.Store, deps.Logger)
	liveHandler := handlers.NewLiveHandler(deps.Hub)
	pageHandler := handlers.NewPageHandler(deps.Sessions, deps.Cfg)

	requireAuth := middleware.RequireAuth(deps.Sessions, deps.Cfg)

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Get("/session", requireAuth, authHandler.Session)

	// Mock payment routes
	payment := api.Group("/payment")
	payment.Post("/create-order", paymentHandler.CreateOrder)
	payment.Post("/verify", paymentHandler.Verify)

	// Application intake, students only
	api.Post("/student/register", requireAuth, middleware.RequireRole(models.RoleUser), studentHandler.Register)

	// Admin control surface
	admin := api.Group("/admin", requireAuth, middleware.RequireRole(models.RoleAdmin))
	admin.Get("/students", adminHandler.ListStudents)
	admin.Post("/bulk-assign", adminHandler.BulkAssign)
	admin.Post("/result-toggle", adminHandler.ResultToggle)
	admin.Get("/export", adminHandler.Export)
	admin.Post("/live", liveHandler.SetLive)
	admin.Post("/notification", liveHandler.SetNotification)
	admin.Post("/scholarship", liveHandler.SetScholarship)

	// Live class
	api.Get("/events", requireAuth, liveHandler.Events)
	api.Get("/live/state", requireAuth, liveHandler.State)
	api.Post("/live/chat", requireAuth, liveHandler.PostChat)

	// Metrics
	app.Get("/metrics", middleware.MetricsHandler())

	// Pages and static assets
	app.Get("/", pageHandler.Home)
	app.Get("/login", pageHandler.Login)
	app.Get("/management-login", pageHandler.ManagementLogin)
	app.Get("/student-dashboard", pageHandler.StudentDashboard)
	app.Get("/sangam-admin", pageHandler.AdminDashboard)
	app.Static("/uploads", deps.Cfg.UploadDir)
	app.Static("/", deps.Cfg.PublicDir)
}
