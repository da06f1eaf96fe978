package realtime

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Kushagra128/LangBridge/internal/metrics"
	"github.com/Kushagra128/LangBridge/internal/models"
)

// Hub ties the registry to presence broadcasting and targeted pushes.
// Every registry change schedules a presence broadcast; bursts of changes
// collapse into one broadcast of the latest state.
type Hub struct {
	registry *Registry
	dirty    chan struct{}
	logger   zerolog.Logger
}

// NewHub creates a hub around registry.
func NewHub(registry *Registry, logger zerolog.Logger) *Hub {
	return &Hub{
		registry: registry,
		dirty:    make(chan struct{}, 1),
		logger:   logger.With().Str("component", "hub").Logger(),
	}
}

// Registry returns the hub's connection registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Connect registers conn as userID's live connection. A replaced handle is
// closed best-effort.
func (h *Hub) Connect(userID string, conn Conn) {
	prev := h.registry.Register(userID, conn)
	if prev != nil && prev != conn {
		_ = prev.Close()
		h.logger.Debug().Str("user_id", userID).Msg("replaced existing connection")
	}
	metrics.ConnectionsOnline.Set(float64(h.registry.Len()))
	h.markDirty()
}

// Disconnect removes conn if it is still userID's registered connection.
func (h *Hub) Disconnect(userID string, conn Conn) {
	if !h.registry.Unregister(userID, conn) {
		return
	}
	metrics.ConnectionsOnline.Set(float64(h.registry.Len()))
	h.markDirty()
}

// Online reports whether userID has a live connection.
func (h *Hub) Online(userID string) bool {
	_, ok := h.registry.Lookup(userID)
	return ok
}

// Push sends evt to userID's live connection. It returns false when the user
// is offline or the push failed; a failed push drops the connection.
func (h *Hub) Push(userID string, evt models.Event) bool {
	conn, ok := h.registry.Lookup(userID)
	if !ok {
		return false
	}
	if err := conn.Send(evt); err != nil {
		metrics.PushFailures.WithLabelValues(evt.Name).Inc()
		h.logger.Warn().Err(err).Str("user_id", userID).Str("event", evt.Name).Msg("push failed, dropping connection")
		h.drop(userID, conn)
		return false
	}
	return true
}

// Run broadcasts presence after registry changes until ctx is done, then
// closes every remaining connection.
func (h *Hub) Run(ctx context.Context) {
	defer h.registry.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.dirty:
			h.broadcastPresence()
		}
	}
}

func (h *Hub) markDirty() {
	select {
	case h.dirty <- struct{}{}:
	default:
		// a broadcast is already pending and will read the latest state
	}
}

func (h *Hub) broadcastPresence() {
	conns := h.registry.Entries()
	online := sortedIDs(conns)

	evt := models.Event{Name: models.EventOnlineUsers, Data: online}
	for id, conn := range conns {
		if err := conn.Send(evt); err != nil {
			metrics.PushFailures.WithLabelValues(evt.Name).Inc()
			h.logger.Debug().Err(err).Str("user_id", id).Msg("presence push failed, dropping connection")
			h.drop(id, conn)
		}
	}

	metrics.PresenceBroadcasts.Inc()
	h.logger.Debug().Int("online", len(online)).Msg("presence broadcast")
}

func (h *Hub) drop(userID string, conn Conn) {
	h.Disconnect(userID, conn)
	_ = conn.Close()
}
