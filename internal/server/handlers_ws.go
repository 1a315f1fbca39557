package server

import (
	"encoding/json"
	"log"
	"net/http"

	"nhooyr.io/websocket"
)

// wsFrame wraps an event payload with its type tag, since WebSocket messages
// carry no event name of their own.
type wsFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// handleLogStreamWS streams a session over a WebSocket, one JSON text
// message per event. Semantics are identical to the SSE endpoint; this
// exists for browsers whose proxies buffer event streams.
func (s *Server) handleLogStreamWS(w http.ResponseWriter, r *http.Request) {
	follower, src, ok := s.newSessionFollower(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // allow any origin (token auth is sufficient)
	})
	if err != nil {
		log.Printf("ws: accept failed for %s: %v", src.Name, err)
		return
	}
	defer conn.CloseNow()

	// CloseRead cancels the context when the client closes or errors.
	ctx := conn.CloseRead(r.Context())
	go follower.Run(ctx)

	log.Printf("stream: ws session opened for %s", src.Name)
	defer log.Printf("stream: ws session closed for %s", src.Name)

	for ev := range follower.Events() {
		data, err := json.Marshal(wsFrame{Type: string(ev.Type), Payload: ev.Payload})
		if err != nil {
			log.Printf("stream: marshal %s event: %v", ev.Type, err)
			continue
		}
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			return
		}
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}
