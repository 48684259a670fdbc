package api

import (
	"encoding/json"
	"net/http"

	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/metrics"
)

// ServerErrorMessage is the opaque message returned for store faults in production.
const ServerErrorMessage = "server error"

// ErrorMessage carries the client-facing text of an error.
type ErrorMessage struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response except credential rejections.
type ErrorResponse struct {
	Error ErrorMessage `json:"error"`
}

// writeError writes a {"error":{"message":...}} response with the given HTTP status code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorMessage{Message: message}})
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// faultResponder is the one place where faults the handlers cannot recover
// from (store failures and panics) become HTTP responses.
type faultResponder struct {
	log        logger.Logger
	production bool
}

// serverError logs err and writes a 500. Production hides the fault detail.
func (f *faultResponder) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
	f.log.Error("store failure",
		logger.String("op", op),
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.Error(err),
	)
	msg := ServerErrorMessage
	if !f.production {
		msg = err.Error()
	}
	writeError(w, http.StatusInternalServerError, msg)
}
