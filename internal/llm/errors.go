package llm

import "fmt"

// bodyTruncateLen bounds how much of an upstream error body is carried
// in an APIStatusError.
const bodyTruncateLen = 200

// APIStatusError is a fatal upstream failure: a non-200 response that was
// not (or no longer) retriable. It carries the HTTP status and a truncated
// response body for diagnostics.
type APIStatusError struct {
	StatusCode int
	Body       string
}

func (e *APIStatusError) Error() string {
	return fmt.Sprintf("completion API error: %d - %s", e.StatusCode, e.Body)
}

// NewAPIStatusError builds an APIStatusError, truncating body to 200 chars.
func NewAPIStatusError(status int, body string) *APIStatusError {
	if len(body) > bodyTruncateLen {
		body = body[:bodyTruncateLen]
	}
	return &APIStatusError{StatusCode: status, Body: body}
}
