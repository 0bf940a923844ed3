package events

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/olahol/melody"
)

const groupKey = "group_id"

// Hub pushes events to websocket clients subscribed to a group.
type Hub struct {
	m *melody.Melody
}

// NewHub creates a hub with keep-alive pings.
func NewHub() *Hub {
	m := melody.New()
	m.Config.MaxMessageSize = 4096
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		groupID, _ := s.Get(groupKey)
		slog.Debug("Websocket client connected", "group_id", groupID)
	})
	m.HandleDisconnect(func(s *melody.Session) {
		groupID, _ := s.Get(groupKey)
		slog.Debug("Websocket client disconnected", "group_id", groupID)
	})
	m.HandleError(func(s *melody.Session, err error) {
		groupID, _ := s.Get(groupKey)
		slog.Warn("Websocket error", "group_id", groupID, "error", err)
	})

	return &Hub{m: m}
}

// Subscribe upgrades the request and attaches the session to groupID.
// Authorization is the caller's job.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, groupID string) error {
	return h.m.HandleRequestWithKeys(w, r, map[string]any{groupKey: groupID})
}

// Publish broadcasts e to sessions subscribed to its group.
func (h *Hub) Publish(_ context.Context, e Event) error {
	body, err := e.JSON()
	if err != nil {
		return err
	}
	return h.m.BroadcastFilter(body, func(s *melody.Session) bool {
		id, ok := s.Get(groupKey)
		return ok && id == e.GroupID
	})
}

// Sessions returns the number of connected clients.
func (h *Hub) Sessions() int {
	return h.m.Len()
}

// Close disconnects every client.
func (h *Hub) Close() error {
	return h.m.Close()
}
