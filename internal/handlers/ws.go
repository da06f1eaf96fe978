package handlers

import (
	"net/http"

	"github.com/Kushagra128/LangBridge/internal/api/middleware"
	"github.com/Kushagra128/LangBridge/internal/realtime"
)

// Connect upgrades an authenticated request to a websocket and keeps it
// registered as the caller's live connection until it closes.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if userID == "" {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.Debug().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	h.logger.Info().Str("user_id", userID).Msg("user connected")
	realtime.NewWSConn(ws).Serve(h.hub, userID)
	h.logger.Info().Str("user_id", userID).Msg("user disconnected")
}
