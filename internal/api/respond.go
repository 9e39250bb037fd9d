package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/goodtune/screentime/internal/usage"
)

const (
	// maxBodyBytes caps request bodies.
	maxBodyBytes = 1 << 20

	msgInvalidBody = "Invalid JSON body"
)

var errInvalidBody = errors.New("invalid JSON body")

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		http.Error(w, `{"error":"Failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// decodePayload reads a JSON object body. An empty body is an empty
// object. Numbers are kept as json.Number so coercion sees the literal.
func decodePayload(r *http.Request) (usage.Payload, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errInvalidBody
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return usage.Payload{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload usage.Payload
	if err := dec.Decode(&payload); err != nil || payload == nil {
		return nil, errInvalidBody
	}
	if dec.More() {
		return nil, errInvalidBody
	}
	return payload, nil
}
