package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gyansetu/internal/config"
	"github.com/example/gyansetu/internal/middleware"
	"github.com/example/gyansetu/internal/services"
	"github.com/example/gyansetu/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	accounts *services.Accounts
	sessions *services.Sessions
	cfg      *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(accounts *services.Accounts, sessions *services.Sessions, cfg *config.Config) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions, cfg: cfg}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Course   string `json:"course"`
}

// Register creates a new portal account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.accounts.Register(c.Context(), req.Name, req.Email, req.Password, req.Role, req.Course)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

type loginRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	ExpectedRole string `json:"expectedRole"`
}

// Login authenticates an account, creates a session and sets the session
// cookie. The response also carries a signed bearer envelope for clients
// that cannot use cookies.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.accounts.Authenticate(c.Context(), req.Email, req.Password, req.ExpectedRole)
	if err != nil {
		return err
	}

	session, err := h.sessions.Create(*user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create session")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, session.Token, h.cfg.SessionTTL)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return c.JSON(fiber.Map{"user": user, "token": token})
}

// Session returns the authenticated user behind the current session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return services.ErrUnauthenticated
	}
	return c.JSON(fiber.Map{"user": user})
}

// Logout destroys the session, if any, and clears the cookie. It always
// succeeds so a stale client can still reset itself.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := middleware.ResolveSessionToken(c, h.cfg); token != "" {
		h.sessions.Delete(token)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return c.JSON(fiber.Map{"success": true})
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword overwrites the account password. The flow is deliberately
// unverified; this portal is a demo, not a production identity system.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.accounts.ResetPassword(c.Context(), req.Email, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
