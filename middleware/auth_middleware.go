package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const partnerLocal = "partner_key"

var ErrNoIdentity = errors.New("no authenticated user")

// Protected validates the bearer token and stores it in c.Locals("user").
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ErrorHandler:  jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing or malformed JWT"})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired JWT"})
}

type Identity struct {
	UserID uuid.UUID
	Role   string
}

// CurrentUser reads the identity from the validated token claims.
func CurrentUser(c *fiber.Ctx) (Identity, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	rawID, _ := claims["user_id"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Identity{}, ErrNoIdentity
	}
	role, _ := claims["role"].(string)
	return Identity{UserID: id, Role: role}, nil
}

// RequireRole must run after Protected.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := CurrentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired JWT"})
		}
		for _, r := range roles {
			if id.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: " + strings.Join(roles, " or ") + " access required",
		})
	}
}

// UserKey keys rate limits by the authenticated user.
func UserKey(c *fiber.Ctx) string {
	id, err := CurrentUser(c)
	if err != nil {
		return ""
	}
	return id.UserID.String()
}

// PartnerKey admits requests carrying one of the configured partner API keys in X-API-Key.
func PartnerKey(keys []string) fiber.Handler {
	var valid [][]byte
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			valid = append(valid, []byte(k))
		}
	}
	return func(c *fiber.Ctx) error {
		got := []byte(c.Get("X-API-Key"))
		if len(got) > 0 {
			for _, k := range valid {
				if subtle.ConstantTimeCompare(got, k) == 1 {
					c.Locals(partnerLocal, string(k[:min(len(k), 6)]))
					return c.Next()
				}
			}
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid partner API key"})
	}
}

// PartnerID is a short non-secret prefix of the key used, for audit logging.
func PartnerID(c *fiber.Ctx) string {
	s, _ := c.Locals(partnerLocal).(string)
	return s
}
