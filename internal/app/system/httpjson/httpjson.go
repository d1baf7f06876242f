// internal/app/system/httpjson/httpjson.go

// Package httpjson provides request decoding and response writing for the
// JSON API. All error responses share one envelope: {"error": "<message>"}.
// Success and failure are otherwise signaled purely by status code class.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies. The largest legitimate payload here is
// a task description or comment; 1 MiB is generous.
const maxBodyBytes = 1 << 20

// errorResponse is the single error envelope for the API.
type errorResponse struct {
	Error string `json:"error"`
}

// Decode reads the request body into dst, rejecting bodies over the size
// limit and unknown trailing data.
func Decode(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	// A second decode hitting anything but EOF means trailing garbage.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// Write serializes v with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the error envelope with the given status code.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, errorResponse{Error: msg})
}
