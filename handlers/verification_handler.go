package handlers

import (
	"context"

	"github.com/domestiq/domestiq_api/models"
	"github.com/domestiq/domestiq_api/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Verifications interface {
	UploadSignature(workerID uuid.UUID) (services.UploadSignature, error)
	Submit(ctx context.Context, workerID uuid.UUID, docType, fileURL string) (*models.VerificationDocument, error)
	ListForWorker(ctx context.Context, workerID uuid.UUID) ([]models.VerificationDocument, error)
	Pending(ctx context.Context) ([]models.VerificationDocument, error)
	Review(ctx context.Context, adminID, docID uuid.UUID, approve bool, notes *string) (*models.VerificationDocument, error)
}

type VerificationHandler struct {
	verifications Verifications
}

func NewVerificationHandler(v Verifications) *VerificationHandler {
	return &VerificationHandler{verifications: v}
}

type SubmitDocumentRequest struct {
	DocType string `json:"doc_type" validate:"required,oneof=id_document proof_of_address certificate"`
	URL     string `json:"url" validate:"required,url"`
}

type ReviewDocumentRequest struct {
	Status string  `json:"status" validate:"required,oneof=approved rejected"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// UploadSignature lets the browser upload straight to Cloudinary.
func (h *VerificationHandler) UploadSignature(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	sig, err := h.verifications.UploadSignature(id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sig)
}

func (h *VerificationHandler) Submit(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req SubmitDocumentRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	doc, err := h.verifications.Submit(c.UserContext(), id.UserID, req.DocType, req.URL)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (h *VerificationHandler) Mine(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	docs, err := h.verifications.ListForWorker(c.UserContext(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(docs)
}

func (h *VerificationHandler) Pending(c *fiber.Ctx) error {
	docs, err := h.verifications.Pending(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(docs)
}

func (h *VerificationHandler) Review(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	docID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	var req ReviewDocumentRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	doc, err := h.verifications.Review(c.UserContext(), id.UserID, docID, req.Status == "approved", req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doc)
}
