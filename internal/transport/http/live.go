package http

import (
	"net/http"
	"reflect"
	"time"

	"vocab-quiz-service/internal/domain"
)

const leaderboardPushInterval = 5 * time.Second

// handleLeaderboardLive upgrades the connection and pushes leaderboard
// snapshots until the client goes away. Snapshots are re-read on an interval
// and only sent when they changed, so idle boards stay quiet.
func (h *Handler) handleLeaderboardLive(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var last []domain.LeaderboardEntry
	sent := false
	push := func() bool {
		entries, err := h.service.Leaderboard(r.Context())
		if err != nil {
			h.logger.Warn("leaderboard read failed", "err", err)
			return true
		}
		if sent && reflect.DeepEqual(entries, last) {
			return true
		}
		last = entries
		sent = true
		if entries == nil {
			entries = []domain.LeaderboardEntry{}
		}
		return conn.WriteJSON(entries) == nil
	}

	if !push() {
		return
	}

	ticker := time.NewTicker(leaderboardPushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if !push() {
				return
			}
		}
	}
}
