// Package httpjson holds the JSON request/response helpers shared by the
// HTTP handlers.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ErrTrailingData is returned by Read when the body holds more than one JSON
// value.
var ErrTrailingData = errors.New("unexpected data after JSON value")

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Read decodes exactly one JSON value from the request body. Bodies larger than
// limit bytes fail with *http.MaxBytesError; anything after the value fails
// with ErrTrailingData.
func Read(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var sizeErr *http.MaxBytesError
		if errors.As(err, &sizeErr) {
			return err
		}
		return ErrTrailingData
	}
	return nil
}

func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, ErrorResponse{Error: msg})
}
