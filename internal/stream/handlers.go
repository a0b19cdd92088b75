package stream

import (
	"backend-trailview/internal/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Sessions is the session side of a websocket connection. Attach returns
// the events a new client needs to catch up and fails for unknown
// sessions. Handle applies one inbound client message.
type Sessions interface {
	Attach(sessionID string) ([][]byte, error)
	Handle(sessionID string, msg []byte) error
}

func RegisterRoutes(r fiber.Router, hub *Hub, sessions Sessions) {
	r.Get("/ws/:sessionID", websocket.New(func(c *websocket.Conn) {
		sessionID := c.Params("sessionID")

		// Register before the snapshot so events published while it is
		// taken wait in Send instead of being lost.
		client := hub.Register(sessionID)
		defer hub.Unregister(client)

		var snapshot [][]byte
		if sessions != nil {
			events, err := sessions.Attach(sessionID)
			if err != nil {
				hub.Unregister(client)
				_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
				return
			}
			snapshot = events
		}

		for _, msg := range snapshot {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			if sessions == nil {
				continue
			}
			if err := sessions.Handle(sessionID, msg); err != nil {
				logging.L().Debug("inbound message rejected", zap.String("session", sessionID), zap.Error(err))
			}
		}
		hub.Unregister(client)
		<-done
	}))
}
