package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/example/gyansetu/internal/config"
	"github.com/example/gyansetu/internal/live"
	"github.com/example/gyansetu/internal/middleware"
	"github.com/example/gyansetu/internal/routes"
	"github.com/example/gyansetu/internal/services"
	"github.com/example/gyansetu/internal/storage"
)

// testServer runs the full route tree against a file store in a temp dir.
type testServer struct {
	app      *fiber.App
	store    storage.Store
	payments *services.Payments
	hub      *live.Hub
	cfg      *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zaptest.NewLogger(t)
	cfg := &config.Config{
		StorageDriver: config.DriverFile,
		DataFile:      filepath.Join(t.TempDir(), "portal.json"),
		UploadDir:     t.TempDir(),
		PublicDir:     t.TempDir(),
		JWTSecret:     "test-secret",
		SessionTTL:    time.Hour,
		OrderTTL:      time.Hour,
	}

	store, err := storage.OpenFileStore(cfg.DataFile, logger)
	require.NoError(t, err)

	sessions := services.NewSessions(cfg.SessionTTL, logger)
	accounts := services.NewAccounts(store, logger)
	payments := services.NewPayments(services.DummySigner{}, cfg.OrderTTL, logger)
	hub := live.NewHub(logger)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	routes.Register(app, routes.Deps{
		Store:    store,
		Sessions: sessions,
		Accounts: accounts,
		Payments: payments,
		Hub:      hub,
		Cfg:      cfg,
		Logger:   logger,
	})

	return &testServer{app: app, store: store, payments: payments, hub: hub, cfg: cfg}
}

// do sends a JSON request, optionally with a session cookie.
func (s *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := s.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session_token" {
			return cookie
		}
	}
	return nil
}

// login registers an account (ignoring conflicts on reuse) and logs it in,
// returning the session cookie.
func (s *testServer) login(t *testing.T, name, email, role string) *http.Cookie {
	t.Helper()

	s.do(t, "POST", "/api/auth/register", fiber.Map{
		"name": name, "email": email, "password": "secret1", "role": role,
	}, nil).Body.Close()

	resp := s.do(t, "POST", "/api/auth/login", fiber.Map{
		"email": email, "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie, "login must set the session cookie")
	return cookie
}

// verifiedTransaction drives the mock gateway end to end and returns the
// proof fields intake expects.
func (s *testServer) verifiedTransaction(t *testing.T) (orderID, paymentID, transactionID string) {
	t.Helper()

	resp := s.do(t, "POST", "/api/payment/create-order", fiber.Map{"amount": 19900}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var order struct {
		OrderID string `json:"orderId"`
	}
	decodeBody(t, resp, &order)

	paymentID = "pay_test_123456"
	resp = s.do(t, "POST", "/api/payment/verify", fiber.Map{
		"orderId":   order.OrderID,
		"paymentId": paymentID,
		"signature": services.DummySigner{}.Sign(order.OrderID, paymentID),
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var verified struct {
		TransactionID string `json:"transactionId"`
	}
	decodeBody(t, resp, &verified)

	return order.OrderID, paymentID, verified.TransactionID
}
