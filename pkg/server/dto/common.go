// Package dto contains the request and response payloads for the HTTP API.
package dto

// ErrorResponse is the payload returned for any failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the payload returned for simple acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}
