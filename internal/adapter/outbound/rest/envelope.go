package rest

import (
	"encoding/json"
)

// The backend wraps responses in one of two envelope shapes, inconsistently
// across modules: {"success": bool, "data": ...} or {"data": ..., "message": ...}.
// Both are normalized here so callers only ever see the inner payload.

// envelope matches either response envelope shape.
type envelope struct {
	Success *bool           `json:"success,omitempty"`
	Status  *bool           `json:"status,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// decodeEnvelope unmarshals a response body into out, unwrapping the data
// envelope when present. A body without an envelope is decoded directly.
func decodeEnvelope(body []byte, out any) error {
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &ValidationError{Message: "malformed response data", Cause: err}
		}
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ValidationError{Message: "malformed response body", Cause: err}
	}
	return nil
}

// serverMessage extracts the human-readable message from an error response
// body, if one is parseable. Returns "" otherwise.
func serverMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}
