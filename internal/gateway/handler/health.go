package handler

import "net/http"

// HandleHealth reports liveness without touching the upstream.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
