package mockapi

import (
	"encoding/json"
	"net/http"

	"github.com/user/blogclient-go/apperror"
)

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps an AppError onto its HTTP status and the standard error
// payload shape the client's gateway parses.
func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	writeJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
