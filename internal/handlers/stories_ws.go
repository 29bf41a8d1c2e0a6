package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/fableloop/fables/internal/apperr"
	"github.com/fableloop/fables/internal/models"
	"github.com/fableloop/fables/internal/processor"
)

const storiesWSReadLimit = 64 << 10

var storiesWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// storiesWSInMessage is the JSON shape sent from the client.
type storiesWSInMessage struct {
	Type    string                    `json:"type"`
	Request *models.GenerationRequest `json:"request"`
}

// storiesWSOutMessage is the JSON shape sent to the client.
type storiesWSOutMessage struct {
	Type   string                   `json:"type"` // stage, result, error
	Stage  string                   `json:"stage,omitempty"`
	Result *models.GenerationResult `json:"result,omitempty"`
	Error  *errorDetail             `json:"error,omitempty"`
}

// StoriesWS handles GET /v1/stories/ws — WebSocket endpoint for generation
// with per-stage progress events. One generate call runs at a time per
// connection; stage events arrive while the pipeline advances.
func (h *Handler) StoriesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := storiesWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("stories ws upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(storiesWSReadLimit)
	conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			log.Debug().Err(err).Msg("stories ws read")
			return
		}
		conn.SetReadDeadline(time.Now().Add(10 * time.Minute))

		var in storiesWSInMessage
		if err := json.Unmarshal(raw, &in); err != nil {
			_ = writeWSJSON(conn, wsError("bad_request", "invalid JSON: "+err.Error()))
			continue
		}
		if in.Type != "generate" {
			_ = writeWSJSON(conn, wsError("bad_request", "expected type: generate"))
			continue
		}
		if in.Request == nil {
			_ = writeWSJSON(conn, wsError("bad_request", "request is required"))
			continue
		}
		if err := in.Request.Validate(h.maxTopicLength); err != nil {
			_ = writeWSJSON(conn, wsError("bad_request", err.Error()))
			continue
		}

		// Progress callbacks run on this goroutine, so writes never race.
		result, genErr := h.generator.GenerateWithProgress(r.Context(), in.Request, func(stage processor.Stage) {
			_ = writeWSJSON(conn, storiesWSOutMessage{Type: "stage", Stage: string(stage)})
		})

		var out storiesWSOutMessage
		if genErr != nil {
			ae := apperr.Translate(genErr)
			out = wsError(string(ae.Kind), ae.Message)
		} else {
			out = storiesWSOutMessage{Type: "result", Result: result}
		}
		if err := writeWSJSON(conn, out); err != nil {
			log.Debug().Err(err).Msg("stories ws write")
			return
		}
	}
}

func wsError(kind, message string) storiesWSOutMessage {
	return storiesWSOutMessage{Type: "error", Error: &errorDetail{Kind: kind, Message: message}}
}

func writeWSJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	return conn.WriteJSON(v)
}
