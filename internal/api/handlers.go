package api

import (
	"encoding/json"
	"net/http"
)

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleGetRooms lists open rooms for the lobby browser.
func (h *routerHandlers) handleGetRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.registry.Rooms()
	writeJSON(w, map[string]interface{}{
		"rooms": rooms,
		"count": len(rooms),
	})
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"rooms":       h.registry.Count(),
		"connections": h.ws.ConnectionCount(),
		"rateLimiter": h.limiter.GetStats(),
	}
	if h.events != nil {
		total, dropped := h.events.Stats()
		stats["events"] = map[string]uint64{
			"written": total,
			"dropped": dropped,
		}
	}
	writeJSON(w, stats)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
