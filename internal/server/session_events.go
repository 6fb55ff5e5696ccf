package server

import (
	"context"
	"log"

	"folio/internal/observability"
	"folio/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// sessionEvent is the wire shape pushed over the session-events stream.
type sessionEvent struct {
	Type   string `json:"type"`
	UserID string `json:"user_id,omitempty"`
}

// SessionEventsHandler returns a websocket handler that pushes session
// lifecycle transitions to a signed-in client. The dashboard uses it to
// redirect immediately when the session is revoked, without polling.
// Authentication is handled by route middleware; the token is read from
// connection locals.
func (s *Server) SessionEventsHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.SessionEventStreams.Inc()
		defer observability.SessionEventStreams.Dec()

		token, _ := conn.Locals("token").(string)
		if token == "" {
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
			return
		}

		ctrl := session.NewController(s.gateway, s.stores.Personal)
		defer ctrl.Dispose()
		ctrl.Initialize(context.Background(), token)

		state := ctrl.Current()
		if state.Session == nil {
			// Token died between the middleware check and here.
			_ = conn.WriteJSON(sessionEvent{Type: "signed_out"})
			_ = conn.Close()
			return
		}
		if err := conn.WriteJSON(sessionEvent{Type: "signed_in", UserID: state.Session.UserID}); err != nil {
			_ = conn.Close()
			return
		}

		states, unsub := ctrl.Subscribe()
		defer unsub()

		// Read pump: we ignore client messages but need reads to notice a
		// closed connection.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case st, ok := <-states:
				if !ok {
					return
				}
				ev := sessionEvent{Type: "signed_out"}
				if st.Session != nil {
					ev = sessionEvent{Type: "signed_in", UserID: st.Session.UserID}
				}
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
				if st.Session == nil {
					// The client is redirecting; nothing more to push.
					_ = conn.Close()
					return
				}
			}
		}
	})
}
