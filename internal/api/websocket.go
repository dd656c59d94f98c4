package api

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/pubid/internal/logging"
)

const (
	streamIdleTimeout  = 60 * time.Second
	streamWriteTimeout = 10 * time.Second
)

// StreamMessage is one reply on the parse stream. Exactly one of Result
// and Error is set.
type StreamMessage struct {
	Type   string         `json:"type"` // "result" or "error"
	Result *ParseResponse `json:"result,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || len(s.cfg.AllowedOrigins) == 0 || slices.Contains(s.cfg.AllowedOrigins, origin)
		},
	}
}

// handleStream parses citations sent over a websocket. Each text message
// is either a JSON ParseRequest or a bare citation; every message gets
// exactly one StreamMessage back, in order. The connection closes after
// streamIdleTimeout without input.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		logging.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.cfg.maxBody())
	logging.DebugContext(r.Context(), "websocket opened", "remote_addr", r.RemoteAddr)

	for {
		conn.SetReadDeadline(time.Now().Add(streamIdleTimeout))
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.WarnContext(r.Context(), "websocket closed", "error", err)
			} else {
				logging.DebugContext(r.Context(), "websocket closed")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		reply := s.streamReply(r, data)
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			logging.WarnContext(r.Context(), "websocket write failed", "error", err)
			return
		}
	}
}

func (s *Server) streamReply(r *http.Request, data []byte) StreamMessage {
	var req ParseRequest
	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, "{") {
		if err := json.Unmarshal(data, &req); err != nil {
			return StreamMessage{Type: "error", Error: &ErrorResponse{Error: "invalid request: " + err.Error()}}
		}
	} else {
		req.Input = text
	}

	resp, _, errResp := s.parse(r, req)
	if errResp != nil {
		return StreamMessage{Type: "error", Error: errResp}
	}
	return StreamMessage{Type: "result", Result: resp}
}
