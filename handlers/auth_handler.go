package handlers

import (
	"context"
	"time"

	"github.com/domestiq/domestiq_api/models"
	"github.com/domestiq/domestiq_api/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Authenticator interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Me(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type RegisterRequest struct {
	FullName string  `json:"full_name" validate:"required,min=3"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Password string  `json:"password" validate:"required,min=8"`
	Role     string  `json:"role" validate:"required,oneof=client worker"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID.String(), FullName: u.FullName, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	u, err := h.auth.Register(c.UserContext(), services.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toUserResponse(u))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	token, u, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"token": token, "user": toUserResponse(u)})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	u, err := h.auth.Me(c.UserContext(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserResponse(u))
}
