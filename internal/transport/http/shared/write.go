// Package shared holds the JSON response helpers used by every handler so
// error envelopes stay consistent across the API surface.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
)

// errorEnvelope is the wire shape of every error response.
type errorEnvelope struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON serializes v with the given status. Encoding failures are
// unrecoverable at this point (headers already sent) and are ignored.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into its HTTP status and envelope.
// Non-domain errors collapse to a generic 500 so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	desc := "internal server error"
	var de *dErrors.Error
	if errors.As(err, &de) {
		desc = de.Message
	}
	WriteJSON(w, status, errorEnvelope{
		Error:            string(code),
		ErrorDescription: desc,
	})
}
