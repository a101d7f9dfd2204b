package handlers

import (
	"errors"
	"fmt"

	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/domestiq/domestiq_api/websocket"
)

type LiveHandler struct {
	hub    *websocket.Hub
	secret []byte
}

func NewLiveHandler(hub *websocket.Hub, jwtSecret string) *LiveHandler {
	return &LiveHandler{hub: hub, secret: []byte(jwtSecret)}
}

type clientMessage struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
}

// Upgrade rejects plain HTTP requests to the socket route.
func (h *LiveHandler) Upgrade(c *fiber.Ctx) error {
	if websocketcontrib.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve expects {"type":"auth","token":...} as the first frame, then keeps the socket
// registered for server pushes until the client leaves. Clients may send {"type":"ping"}.
func (h *LiveHandler) Serve() fiber.Handler {
	return websocketcontrib.New(func(c *websocketcontrib.Conn) {
		var auth clientMessage
		if err := c.ReadJSON(&auth); err != nil || auth.Type != "auth" {
			log.WithError(err).Debug("WebSocket auth failed: invalid or missing auth message")
			_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
			_ = c.Close()
			return
		}
		userID, err := h.parseToken(auth.Token)
		if err != nil {
			log.WithError(err).Debug("WebSocket auth failed: invalid token")
			_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
			_ = c.Close()
			return
		}

		client := h.hub.Register(userID, c)
		defer func() {
			h.hub.Unregister(userID, c)
			_ = c.Close()
		}()
		_ = client.WriteJSON(fiber.Map{"type": "ready"})

		for {
			var msg clientMessage
			if err := c.ReadJSON(&msg); err != nil {
				if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
					log.WithField("user_id", userID).Debug("WebSocket closed")
				} else {
					log.WithError(err).WithField("user_id", userID).Debug("WebSocket read error")
				}
				return
			}
			if msg.Type == "ping" {
				_ = client.WriteJSON(fiber.Map{"type": "pong"})
			}
		}
	})
}

func (h *LiveHandler) parseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return h.secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	raw, _ := claims["user_id"].(string)
	return uuid.Parse(raw)
}
