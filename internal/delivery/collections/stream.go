package collections

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"sgfkit/internal/domain/collection"
)

type streamResult struct {
	OK     bool                      `json:"ok"`
	Error  string                    `json:"error,omitempty"`
	Result *collection.ParseResponse `json:"result,omitempty"`
}

// HandleParseStream upgrades to a websocket and answers every text message
// with the parse result of its content. Parse failures are reported per
// message and keep the connection open.
func (h *CollectionHandler) HandleParseStream(w http.ResponseWriter, r *http.Request) {
	strict, err := h.strictParam(r)
	if err != nil {
		http.Error(w, "invalid strict flag", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if h.cfg.MaxSgfBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxSgfBytes)
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				h.log.Debugw("websocket read stopped", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		result := streamResult{OK: true}
		tree, err := h.collectionUC.Parse(string(data), strict)
		if err != nil {
			result = streamResult{Error: err.Error()}
		} else {
			resp := collection.NewParseResponse(tree)
			result.Result = &resp
		}

		if err := conn.WriteJSON(result); err != nil {
			h.log.Warnw("websocket write failed", "error", err)
			return
		}
	}
}
