// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// Error responses always have the same shape, so the client can render
// the message verbatim:
//
//	{ "error": "Email already registered" }
package response

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope returned for error cases.
//
// Success responses may return any JSON shape; error responses carry a
// single human-readable message.
type Response struct {
	Error string `json:"error"`
}

// Messages for failures that have no more specific reason.
const (
	MsgEmptyBody = "request body is empty"
	MsgInternal  = "Internal server error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Error wraps a message into the error envelope.
func Error(msg string) Response {
	return Response{Error: msg}
}

// GeneralError wraps any Go error into the error envelope.
// Use it only for errors whose text is safe to show to a client, such as
// JSON decode errors. Unexpected failures should use Error(MsgInternal).
func GeneralError(err error) Response {
	return Response{Error: err.Error()}
}
