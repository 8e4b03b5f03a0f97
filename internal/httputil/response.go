package httputil

import (
	"encoding/json"
	"net/http"
)

// RespondJSON writes a JSON response with the given status code.
// It handles encoding errors safely by marshaling first, preventing
// partial responses if encoding fails after headers are sent.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		// Encoding failed - return 500 instead
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error  string                 `json:"error"`
	Status int                    `json:"status"`
	Extra  map[string]interface{} `json:"-"`
}

// MarshalJSON implements custom JSON marshaling to include Extra fields at top level
func (e ErrorBody) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		"error":  e.Error,
		"status": e.Status,
	}
	for k, v := range e.Extra {
		if k == "error" || k == "status" {
			continue
		}
		m[k] = v
	}
	return json.Marshal(m)
}

// RespondError writes {"error": message, "status": code}
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondErrorWithExtras(w, status, message, nil)
}

// RespondErrorWithExtras writes an error body with additional top-level fields
func RespondErrorWithExtras(w http.ResponseWriter, status int, message string, extras map[string]interface{}) {
	payload, err := json.Marshal(ErrorBody{Error: message, Status: status, Extra: extras})
	if err != nil {
		// Fallback to plain text if JSON encoding fails
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}
