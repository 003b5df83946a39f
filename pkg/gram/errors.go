package gram

import (
	"encoding/json"
	"fmt"

	"resty.dev/v3"
)

// APIError is any non-2xx backend response, with the message already
// extracted from whichever payload shape the backend chose.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

func newAPIError(res *resty.Response) *APIError {
	return &APIError{
		Status:  res.StatusCode(),
		Message: extractMessage(res.Bytes(), res.Status()),
	}
}

// extractMessage normalizes the backend's error payloads. The backend
// returns either {"detail": "message"} or, for validation errors,
// {"detail": [{"msg": "..."}, ...]} where the first entry wins. Anything
// unrecognized falls back to the given default.
func extractMessage(body []byte, fallback string) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return fallback
	}

	var msg string
	if err := json.Unmarshal(payload.Detail, &msg); err == nil && msg != "" {
		return msg
	}

	var list []struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Detail, &list); err == nil && len(list) > 0 {
		if list[0].Msg != "" {
			return list[0].Msg
		}
		if list[0].Message != "" {
			return list[0].Message
		}
	}

	return fallback
}
