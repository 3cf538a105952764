// Package httputil writes the JSON bodies served by the admin API.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/banshee-data/districting/internal/monitoring"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("failed to encode json response: %v", err)
	}
}

// WriteJSONOK writes v with 200 OK.
func WriteJSONOK(w http.ResponseWriter, v interface{}) {
	WriteJSON(w, http.StatusOK, v)
}

// WriteError writes err as an ErrorBody. Server errors are also logged.
func WriteError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		monitoring.Logf("http %d: %v", status, err)
	}
	WriteJSON(w, status, ErrorBody{Error: err.Error(), Status: status})
}

// WriteLookupError answers a failed lookup: 404 when err wraps notFound,
// 500 otherwise.
func WriteLookupError(w http.ResponseWriter, err, notFound error) {
	status := http.StatusInternalServerError
	if errors.Is(err, notFound) {
		status = http.StatusNotFound
	}
	WriteError(w, status, err)
}
