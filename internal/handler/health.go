package handler

import "net/http"

// HandleHealth is the liveness probe. It answers 200 as long as the
// process is serving requests; it deliberately does not touch the
// database, so a wedged disk doesn't make the probe flap.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
