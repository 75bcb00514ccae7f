package handlers

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/gyansetu/internal/config"
	"github.com/example/gyansetu/internal/models"
	"github.com/example/gyansetu/internal/services"
	"github.com/example/gyansetu/internal/storage"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// StudentHandler accepts scholarship applications.
type StudentHandler struct {
	store    storage.Store
	payments *services.Payments
	cfg      *config.Config
	logger   *zap.Logger
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(store storage.Store, payments *services.Payments, cfg *config.Config, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{store: store, payments: payments, cfg: cfg, logger: logger}
}

type paymentProof struct {
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
	OrderID       string `json:"orderId"`
	PaymentID     string `json:"paymentId"`
}

type documentUpload struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Base64   string `json:"base64"`
}

type registerStudentRequest struct {
	FullName    string          `json:"fullName"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email"`
	DateOfBirth string          `json:"dateOfBirth"`
	Address     string          `json:"address"`
	SchoolName  string          `json:"schoolName"`
	Board       string          `json:"board"`
	ClassName   string          `json:"className"`
	Document    *documentUpload `json:"document"`
	Payment     *paymentProof   `json:"payment"`

	// Older form clients send the proof flattened.
	PaymentStatus    string `json:"paymentStatus"`
	PaymentReference string `json:"paymentReference"`
}

func (r *registerStudentRequest) proof() paymentProof {
	if r.Payment != nil {
		return *r.Payment
	}
	return paymentProof{Status: r.PaymentStatus, TransactionID: r.PaymentReference}
}

// Register persists an application, but only when the attached payment proof
// round-trips through the verified-transaction ledger: the claimed
// transaction must exist and its (orderId, paymentId) pair must match what
// the client asserts, so an unrelated transaction id cannot be replayed.
func (h *StudentHandler) Register(c *fiber.Ctx) error {
	var req registerStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	proof := req.proof()
	if proof.Status != "success" || proof.TransactionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Payment verification is mandatory before submission.")
	}

	txn, ok := h.payments.Lookup(proof.TransactionID)
	if !ok || txn.OrderID != proof.OrderID || txn.PaymentID != proof.PaymentID {
		return services.ErrPaymentNotVerified
	}

	student := &models.Student{
		FullName:         req.FullName,
		Phone:            req.Phone,
		Email:            req.Email,
		DateOfBirth:      req.DateOfBirth,
		Address:          req.Address,
		SchoolName:       req.SchoolName,
		Board:            req.Board,
		ClassName:        req.ClassName,
		PaymentStatus:    "success",
		PaymentReference: proof.TransactionID,
		ResultStatus:     models.ResultPending,
	}

	if err := h.store.CreateStudent(c.Context(), student); err != nil {
		return err
	}

	// Create first, attach second: an upload failure must not lose the
	// record that already exists, so it is logged and the 201 still goes
	// out with the created application.
	if req.Document != nil && req.Document.Base64 != "" && req.Document.FileName != "" {
		if url, err := h.saveDocument(student.ID.String(), req.Document); err != nil {
			h.logger.Error("document upload failed",
				zap.String("student_id", student.ID.String()), zap.Error(err))
		} else if err := h.store.PatchStudent(c.Context(), student.ID.String(), map[string]any{"document_url": url}); err != nil {
			h.logger.Error("document url patch failed",
				zap.String("student_id", student.ID.String()), zap.Error(err))
		} else {
			student.DocumentURL = url
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"student":       student,
		"transactionId": proof.TransactionID,
	})
}

func (h *StudentHandler) saveDocument(studentID string, doc *documentUpload) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(doc.Base64)
	if err != nil {
		return "", fmt.Errorf("decode document: %w", err)
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		return "", err
	}

	safeName := fmt.Sprintf("%s-%d-%s",
		studentID, time.Now().UnixMilli(), unsafeFileChars.ReplaceAllString(doc.FileName, "_"))
	if err := os.WriteFile(filepath.Join(h.cfg.UploadDir, safeName), raw, 0o644); err != nil {
		return "", err
	}

	return "/uploads/" + safeName, nil
}
