package facebook_tracking

import (
	"fmt"
)

const maxErrorBody = 512

// TransportError reports a failed request: either no response at all (StatusCode 0)
// or a response with a non-2xx status.
type TransportError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		if e.StatusCode == 0 {
			return fmt.Sprintf("conversions request failed: %v", e.Err)
		}
		return fmt.Sprintf("conversions request failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("conversions request failed with status %d: %s", e.StatusCode, truncate(e.Body))
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseParseError reports a response body that is not valid JSON.
type ResponseParseError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("could not parse conversions response %q: %v", truncate(e.Body), e.Err)
}

func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

// MissingRequiredFieldError reports an input field that must be supplied.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field %v", e.Field)
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
