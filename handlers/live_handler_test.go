package handlers

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/domestiq/domestiq_api/websocket"
	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveParseToken(t *testing.T) {
	h := NewLiveHandler(websocket.NewHub(), testSecret)
	user := uuid.New()

	got, err := h.parseToken(bearer(t, user, "client")[len("Bearer "):])
	require.NoError(t, err)
	assert.Equal(t, user, got)

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("someone-else"))
	require.NoError(t, err)
	_, err = h.parseToken(other)
	assert.Error(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.String(),
		"exp":     time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = h.parseToken(expired)
	assert.Error(t, err)
}

func TestLiveUpgradeRequired(t *testing.T) {
	h := NewLiveHandler(websocket.NewHub(), testSecret)
	app := fiber.New()
	app.Use("/ws", h.Upgrade)
	app.Get("/ws", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	res := call(t, app, http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusUpgradeRequired, res.status)
}

func TestLivePingsDuringServerPushes(t *testing.T) {
	hub := websocket.NewHub()
	h := NewLiveHandler(hub, testSecret)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use("/ws", h.Upgrade)
	app.Get("/ws", h.Serve())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	user := uuid.New()
	conn, _, err := fastws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "auth", Token: bearer(t, user, "client")[len("Bearer "):]}))
	var ready map[string]any
	require.NoError(t, conn.ReadJSON(&ready))
	require.Equal(t, "ready", ready["type"])
	require.Eventually(t, func() bool { return hub.Online(user) == 1 }, time.Second, 5*time.Millisecond)

	var pongs, pushes atomic.Int32
	go func() {
		for {
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			switch msg["type"] {
			case "pong":
				pongs.Add(1)
			case "notification":
				pushes.Add(1)
			}
		}
	}()

	const rounds = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if err := conn.WriteJSON(clientMessage{Type: "ping"}); err != nil {
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			hub.SendToUser(user, fiber.Map{"type": "notification"})
		}
	}()
	wg.Wait()

	assert.Eventually(t, func() bool {
		return pongs.Load() == rounds && pushes.Load() == rounds
	}, 5*time.Second, 10*time.Millisecond)
}
