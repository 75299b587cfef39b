// Package ws exposes the progressive query endpoint: one request in, a
// stream of log frames out, then exactly one terminal frame.
package ws

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	httpapi "github.com/oceandata/argo-explorer/internal/api/http"
	"github.com/oceandata/argo-explorer/internal/session"
)

// Frame is one server-to-client message. Type is "log", "error", or
// "complete"; CSV and Filename are set only on "complete".
type Frame struct {
	Type     string `json:"type"`
	Message  string `json:"message,omitempty"`
	CSV      string `json:"csv,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// RegisterRoutes wires the progressive endpoint into the Fiber app.
func RegisterRoutes(app *fiber.App, runner httpapi.Runner) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/process", websocket.New(func(conn *websocket.Conn) {
		serve(conn, runner)
	}))
}

// serve runs one progressive session over an open connection. The session
// is unbounded; every progress notice becomes a log frame. A failed write
// means the client is gone: the session is cancelled and no terminal
// frame is attempted.
func serve(conn *websocket.Conn, runner httpapi.Runner) {
	defer conn.Close()

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return
	}

	req, err := httpapi.BindRequest(raw)
	if err != nil {
		conn.WriteJSON(Frame{Type: "error", Message: err.Error()})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	progress := func(message string) {
		if err := conn.WriteJSON(Frame{Type: "log", Message: message}); err != nil {
			cancel()
		}
	}

	res, err := runner.Run(ctx, req, session.Options{Progress: progress})
	switch {
	case err == nil:
		conn.WriteJSON(Frame{Type: "complete", CSV: res.CSV, Filename: res.Filename})
	case errors.Is(err, context.Canceled):
		// Client disconnected mid-session; nothing left to tell it.
		log.Println("ws: session cancelled by client disconnect")
	default:
		conn.WriteJSON(Frame{Type: "error", Message: err.Error()})
	}
}
