package handlers

import (
	"context"
	"time"

	"github.com/domestiq/domestiq_api/middleware"
	"github.com/domestiq/domestiq_api/models"
	"github.com/domestiq/domestiq_api/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Consents interface {
	Grant(ctx context.Context, userID uuid.UUID, consentType string, partner *string, expiresAt *time.Time) (*models.ConsentRecord, error)
	Revoke(ctx context.Context, userID uuid.UUID, consentType string) error
	List(ctx context.Context, userID uuid.UUID) ([]models.ConsentRecord, error)
}

type IncomeStatements interface {
	Generate(ctx context.Context, workerID uuid.UUID, period string) (*models.IncomeStatement, error)
	List(ctx context.Context, workerID uuid.UUID) ([]models.IncomeStatement, error)
	Get(ctx context.Context, workerID, id uuid.UUID) (*models.IncomeStatement, error)
	PartnerVerify(ctx context.Context, statementID uuid.UUID, hash string) (services.VerificationResult, error)
}

type IncomeHandler struct {
	consents   Consents
	statements IncomeStatements
}

func NewIncomeHandler(consents Consents, statements IncomeStatements) *IncomeHandler {
	return &IncomeHandler{consents: consents, statements: statements}
}

type GrantConsentRequest struct {
	ConsentType string     `json:"consent_type" validate:"required,oneof=income_data_sharing marketing"`
	PartnerName *string    `json:"partner_name,omitempty" validate:"omitempty,max=255"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type GenerateStatementRequest struct {
	Period string `json:"period" validate:"required,datetime=2006-01"`
}

type PartnerVerifyRequest struct {
	StatementID string `json:"statement_id" validate:"required,uuid"`
	Hash        string `json:"verification_hash" validate:"required,len=64,hexadecimal"`
}

func (h *IncomeHandler) GrantConsent(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req GrantConsentRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	rec, err := h.consents.Grant(c.UserContext(), id.UserID, req.ConsentType, req.PartnerName, req.ExpiresAt)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *IncomeHandler) RevokeConsent(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.consents.Revoke(c.UserContext(), id.UserID, c.Params("type")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *IncomeHandler) ListConsents(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	recs, err := h.consents.List(c.UserContext(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recs)
}

func (h *IncomeHandler) Generate(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req GenerateStatementRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	st, err := h.statements.Generate(c.UserContext(), id.UserID, req.Period)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(st)
}

func (h *IncomeHandler) List(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	list, err := h.statements.List(c.UserContext(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *IncomeHandler) Get(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	stID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	st, err := h.statements.Get(c.UserContext(), id.UserID, stID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(st)
}

// PartnerVerify is mounted behind the partner API key guard.
func (h *IncomeHandler) PartnerVerify(c *fiber.Ctx) error {
	var req PartnerVerifyRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	stID, err := uuid.Parse(req.StatementID)
	if err != nil {
		return badRequest(c, "statement_id must be a valid UUID")
	}
	res, err := h.statements.PartnerVerify(c.UserContext(), stID, req.Hash)
	if err != nil {
		return respondError(c, err)
	}
	log.WithFields(log.Fields{"partner": middleware.PartnerID(c), "statement_id": stID, "valid": res.Valid}).Info("partner verified income statement")
	if !res.Valid {
		return c.JSON(fiber.Map{"valid": false})
	}
	return c.JSON(fiber.Map{"valid": true, "statement": res.Statement})
}
