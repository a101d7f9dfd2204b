// Package handlers adapts HTTP requests onto the services. Errors are reported as {"error": msg}.
package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/domestiq/domestiq_api/database"
	"github.com/domestiq/domestiq_api/middleware"
	"github.com/domestiq/domestiq_api/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodes and validates the request body. On failure it has already written the
// 400 response and the caller returns the error it gets back.
func parseBody(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}
	return true, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// respondError maps store and service errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	status, msg := fiber.StatusInternalServerError, "Internal server error"
	var gwErr *services.GatewayError
	switch {
	case errors.As(err, &gwErr) && gwErr.Rejected():
		status, msg = fiber.StatusBadRequest, gwErr.Message
	case errors.Is(err, database.ErrNotFound):
		status, msg = fiber.StatusNotFound, "Not found"
	case errors.Is(err, database.ErrForbidden):
		status, msg = fiber.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrPaymentAlreadyInitiated),
		errors.Is(err, services.ErrInvalidTransition):
		status, msg = fiber.StatusConflict, err.Error()
	case errors.Is(err, database.ErrConflict):
		status, msg = fiber.StatusConflict, "Resource already exists or was modified"
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrAccountDisabled):
		status, msg = fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrConsentRequired):
		status, msg = fiber.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrBookingNotPayable),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrUnknownBank),
		errors.Is(err, services.ErrNoBankAccount),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrInvalidSchedule),
		errors.Is(err, services.ErrWorkerUnavailable),
		errors.Is(err, services.ErrNotReviewable),
		errors.Is(err, services.ErrInvalidConsentType),
		errors.Is(err, services.ErrInvalidPeriod),
		errors.Is(err, services.ErrInvalidDocumentType),
		errors.Is(err, services.ErrInvalidLocation):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrGateway), errors.Is(err, services.ErrUpstream),
		errors.Is(err, services.ErrAmountMismatch):
		status, msg = fiber.StatusBadGateway, "Upstream service failed"
	case errors.Is(err, services.ErrTranslationDisabled), errors.Is(err, services.ErrUploadsDisabled):
		status, msg = fiber.StatusServiceUnavailable, err.Error()
	}
	if status >= fiber.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{"path": c.Path(), "method": c.Method()}).Error("request failed")
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// identity returns a 401 fiber error when the route was mounted without the JWT guard.
func identity(c *fiber.Ctx) (middleware.Identity, error) {
	id, err := middleware.CurrentUser(c)
	if err != nil {
		return id, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
	}
	return id, nil
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func pageQuery(c *fiber.Ctx) (int, int) {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	return page, limit
}
