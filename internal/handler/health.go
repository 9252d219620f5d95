package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// Health returns a handler reporting liveness.
// GET /api/health — returns {"status":"ok","timestamp":<unix seconds>}.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	}
}
