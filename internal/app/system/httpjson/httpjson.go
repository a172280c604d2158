// Package httpjson holds request decoding and response writing for the
// JSON API. Responses use a plain body for success and an envelope
// {"error":{"code","message"}} for failures, where code is a stable
// machine-readable string clients can branch on.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// MaxBodyBytes caps request bodies. Scan and CRUD payloads are small;
// anything larger is a mistake or abuse.
const MaxBodyBytes = 1 << 20

// ErrorBody is the wire shape of an API failure.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// Decode reads a JSON body into dst, rejecting unknown fields and
// oversized or trailing content. The returned error message is safe to
// show to clients.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errors.New("request body too large")
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		default:
			return errors.New("request body is not valid JSON for this endpoint")
		}
	}
	if dec.More() {
		return errors.New("request body has trailing content")
	}
	return nil
}

// Write sends v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing to do but log.
		zap.L().Warn("response encode failed", zap.Error(err))
	}
}

// WriteError sends the error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	Write(w, status, errorEnvelope{Error: ErrorBody{Code: code, Message: message}})
}

// BadRequest is WriteError with code "bad_request".
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

// Validation sends a 422 with code "validation_failed".
func Validation(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_failed", message)
}

// NotFound sends a 404 with code "not_found".
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

// Forbidden sends a 403 with code "forbidden".
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message)
}

// Unauthorized sends a 401 with code "unauthorized".
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

// Conflict sends a 409 with the given code.
func Conflict(w http.ResponseWriter, code, message string) {
	WriteError(w, http.StatusConflict, code, message)
}

// Internal logs err and sends a generic 500. Details never reach the
// client.
func Internal(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	log.Error(op, zap.Error(err))
	WriteError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
}
