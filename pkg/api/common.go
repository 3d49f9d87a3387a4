// Package api holds the request and response bodies of the REST surface,
// shared by the server handlers and the CLI client.
package api

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`             // HTTP status text
	Message string `json:"message,omitempty"` // human-readable detail
}

// MessageResponse carries a confirmation with no other payload.
type MessageResponse struct {
	Message string `json:"message"`
}
