package handlers

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/example/gyansetu/internal/live"
	"github.com/example/gyansetu/internal/middleware"
	"github.com/example/gyansetu/internal/services"
)

// pingInterval forces a comment line down idle streams so dead connections
// surface as flush errors.
const pingInterval = 30 * time.Second

// LiveHandler exposes the live-class broadcast hub.
type LiveHandler struct {
	hub *live.Hub
}

// NewLiveHandler constructs a LiveHandler.
func NewLiveHandler(hub *live.Hub) *LiveHandler {
	return &LiveHandler{hub: hub}
}

// Events is the server-sent-event stream. A new connection gets a full
// snapshot first, then incremental live / notification / scholarship / chat
// events until the client goes away.
func (h *LiveHandler) Events(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	sub, snapshot := h.hub.Subscribe()
	middleware.LiveSubscribers.Inc()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			sub.Close()
			middleware.LiveSubscribers.Dec()
		}()

		if !writeEvent(w, live.SnapshotEvent(snapshot)) {
			return
		}

		ping := time.NewTicker(pingInterval)
		defer ping.Stop()

		for {
			select {
			case event := <-sub.C:
				if !writeEvent(w, event) {
					return
				}
			case <-ping.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-sub.Done():
				return
			}
		}
	}))

	return nil
}

func writeEvent(w *bufio.Writer, event live.Event) bool {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, event.Data); err != nil {
		return false
	}
	return w.Flush() == nil
}

// State returns the current hub snapshot for clients that poll instead of
// streaming.
func (h *LiveHandler) State(c *fiber.Ctx) error {
	return c.JSON(h.hub.State())
}

type chatRequest struct {
	Text string `json:"text"`
}

// PostChat appends a message to the transcript under the authenticated
// user's name and broadcasts it.
func (h *LiveHandler) PostChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return services.ErrValidation
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return services.ErrUnauthenticated
	}

	msg := h.hub.PostChat(user.Name, req.Text)
	return c.Status(fiber.StatusCreated).JSON(msg)
}

type liveURLRequest struct {
	URL string `json:"url"`
}

// SetLive updates the live-stream URL.
func (h *LiveHandler) SetLive(c *fiber.Ctx) error {
	var req liveURLRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	h.hub.SetLive(req.URL)
	return c.JSON(fiber.Map{"url": req.URL})
}

type noticeRequest struct {
	Text string `json:"text"`
}

// SetNotification updates the broadcast notification text.
func (h *LiveHandler) SetNotification(c *fiber.Ctx) error {
	var req noticeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	h.hub.SetNotification(req.Text)
	return c.JSON(fiber.Map{"text": req.Text})
}

// SetScholarship updates the scholarship notice.
func (h *LiveHandler) SetScholarship(c *fiber.Ctx) error {
	var req noticeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	h.hub.SetScholarship(req.Text)
	return c.JSON(fiber.Map{"text": req.Text})
}
