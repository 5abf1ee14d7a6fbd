package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/aegis-screener/internal/brain"
	"github.com/wonny/aegis-screener/internal/contracts"
)

const streamWriteWait = 10 * time.Second

// Stream message types
const (
	StreamProgress = "progress"
	StreamResult   = "result"
	StreamError    = "error"
)

// StreamMessage is one websocket frame of a streamed screening run
type StreamMessage struct {
	Type    string                   `json:"type"`
	Done    int                      `json:"done,omitempty"`
	Total   int                      `json:"total,omitempty"`
	Outcome *contracts.TickerOutcome `json:"outcome,omitempty"`
	Result  *brain.RunResult         `json:"result,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Stream runs a screening pass over a websocket, one progress frame per ticker then the result.
// Closing the socket cancels the run.
// GET /ws/screen?mode=opportunity&top=3
func (h *ScreenHandler) Stream(w http.ResponseWriter, r *http.Request) {
	orchestrator, config, err := h.resolve(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.acquire() {
		respondError(w, http.StatusConflict, "A screening run is already in progress")
		return
	}
	defer h.release()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 클라이언트 종료 감지
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(msg StreamMessage) error {
		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		return conn.WriteJSON(msg)
	}

	progress := func(done, total int, outcome contracts.TickerOutcome) {
		if err := send(StreamMessage{Type: StreamProgress, Done: done, Total: total, Outcome: &outcome}); err != nil {
			cancel()
		}
	}

	result, runErr := orchestrator.Run(ctx, config, progress)
	switch {
	case ctx.Err() != nil:
		h.logger.Info("Streamed screening run cancelled by client")
		return
	case runErr != nil:
		h.logger.WithError(runErr).Error("Streamed screening run failed")
		send(StreamMessage{Type: StreamError, Error: runErr.Error()})
	default:
		if err := send(StreamMessage{Type: StreamResult, Result: result}); err != nil {
			h.logger.WithError(err).Warn("Failed to send screening result")
			return
		}
	}

	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
