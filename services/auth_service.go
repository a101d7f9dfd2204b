package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/domestiq/domestiq_api/database"
	"github.com/domestiq/domestiq_api/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type RegisterInput struct {
	FullName string
	Email    string
	Phone    *string
	Password string
	Role     string
}

type AuthService struct {
	users    UserRepository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	hashCost int
}

func NewAuthService(users UserRepository, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, secret: []byte(secret), tokenTTL: tokenTTL, now: time.Now, hashCost: bcrypt.DefaultCost}
}

// Register creates a client or worker account. Admins are only seeded.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Role != models.RoleClient && in.Role != models.RoleWorker {
		in.Role = models.RoleClient
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:    in.Phone,
		Password: string(hashed),
		Role:     in.Role,
		IsActive: true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login returns a signed token carrying user_id and role.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, database.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return "", nil, ErrAccountDisabled
	}

	claims := jwt.MapClaims{
		"user_id": u.ID.String(),
		"role":    u.Role,
		"exp":     s.now().Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}
