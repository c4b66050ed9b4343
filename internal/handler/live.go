package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware in front of gin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveHandler streams session snapshots over a websocket. Clients get the
// current snapshot on connect and a new one after every state change.
type LiveHandler struct {
	eng SessionEngine
	log zerolog.Logger
}

func NewLiveHandler(eng SessionEngine, logger zerolog.Logger) *LiveHandler {
	return &LiveHandler{eng: eng, log: logger.With().Str("module", "handler").Str("component", "live").Logger()}
}

func (h *LiveHandler) Register(r *gin.RouterGroup) {
	r.GET("/session/live", h.stream)
}

func (h *LiveHandler) stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := h.eng.Subscribe()
	defer cancel()

	// Drain reads so close frames and pings are processed; the feed is one way.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(h.eng.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
