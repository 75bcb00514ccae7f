package handlers

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gyansetu/internal/config"
	"github.com/example/gyansetu/internal/middleware"
	"github.com/example/gyansetu/internal/models"
	"github.com/example/gyansetu/internal/services"
)

// PageHandler serves the portal pages. Unlike the API, protected pages
// redirect to a role-appropriate login entry point instead of returning a
// structured error.
type PageHandler struct {
	sessions *services.Sessions
	cfg      *config.Config
}

// NewPageHandler constructs a PageHandler.
func NewPageHandler(sessions *services.Sessions, cfg *config.Config) *PageHandler {
	return &PageHandler{sessions: sessions, cfg: cfg}
}

func (h *PageHandler) currentRole(c *fiber.Ctx) (string, bool) {
	token := c.Cookies(middleware.SessionCookie)
	if token == "" {
		return "", false
	}
	session, ok := h.sessions.Get(token)
	if !ok {
		return "", false
	}
	return session.User.Role, true
}

func (h *PageHandler) sendPage(c *fiber.Ctx, name string) error {
	return c.SendFile(filepath.Join(h.cfg.PublicDir, name))
}

// Home serves the landing page.
func (h *PageHandler) Home(c *fiber.Ctx) error {
	return h.sendPage(c, "index.html")
}

// Login serves the student login page; an authenticated visitor is bounced
// straight to their dashboard.
func (h *PageHandler) Login(c *fiber.Ctx) error {
	if role, ok := h.currentRole(c); ok {
		if role == models.RoleAdmin {
			return c.Redirect("/sangam-admin")
		}
		return c.Redirect("/student-dashboard")
	}
	return h.sendPage(c, "login.html")
}

// ManagementLogin serves the admin login page.
func (h *PageHandler) ManagementLogin(c *fiber.Ctx) error {
	if role, ok := h.currentRole(c); ok && role == models.RoleAdmin {
		return c.Redirect("/sangam-admin")
	}
	return h.sendPage(c, "management-login.html")
}

// StudentDashboard is the student-only page.
func (h *PageHandler) StudentDashboard(c *fiber.Ctx) error {
	role, ok := h.currentRole(c)
	if !ok {
		return c.Redirect("/login")
	}
	if role == models.RoleAdmin {
		return c.Redirect("/sangam-admin")
	}
	return h.sendPage(c, "student-dashboard.html")
}

// AdminDashboard is the admin-only page.
func (h *PageHandler) AdminDashboard(c *fiber.Ctx) error {
	role, ok := h.currentRole(c)
	if !ok || role != models.RoleAdmin {
		return c.Redirect("/management-login")
	}
	return h.sendPage(c, "admin.html")
}
