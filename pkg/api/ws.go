package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"taxihub/pkg/logger"
	"taxihub/pkg/metrics"
	"taxihub/pkg/models"
)

const wsWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWS streams snapshot subscriptions over a websocket. Each message is
// the full current matching set; the client re-renders from scratch on every
// message. Supported views:
//
//	view=available  — PENDING orders with no driver (drivers)
//	view=active     — the caller's in-flight order(s)
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	claims, err := s.tokens.Validate(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var filter models.OrderFilter
	switch r.URL.Query().Get("view") {
	case "available":
		if claims.Role != models.RoleDriver {
			http.Error(w, "available view is for drivers", http.StatusForbidden)
			return
		}
		filter = availableOrdersFilter()
	case "active":
		if claims.Role == models.RoleDriver {
			filter = models.OrderFilter{DriverID: claims.UserID, Statuses: models.ActiveStatuses}
		} else {
			filter = models.OrderFilter{
				UserID:   claims.UserID,
				Statuses: []string{models.StatusPending, models.StatusAccepted, models.StatusInProgress},
			}
		}
	default:
		http.Error(w, "unknown view", http.StatusBadRequest)
		return
	}

	sub, err := s.hub.Subscribe(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		return
	}

	metrics.WatchSubscribers.Inc()
	defer func() {
		sub.Close()
		conn.Close()
		metrics.WatchSubscribers.Dec()
	}()

	// Reader goroutine only detects the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case snapshot, ok := <-sub.C:
			if !ok {
				return
			}
			if snapshot == nil {
				snapshot = []*models.Order{}
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(snapshot); err != nil {
				s.log.Debug("ws write failed, dropping subscriber", logger.Error(err))
				return
			}
		}
	}
}
