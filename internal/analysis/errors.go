package analysis

import "fmt"

// NetworkError means the analysis service could not be reached or answered
// with a non-success status.
type NetworkError struct {
	URL        string
	StatusCode int    // Zero when no response arrived
	Detail     string // Human-readable detail from the error payload, if any
	Err        error  // Transport error, if any
}

func (e *NetworkError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("analysis request failed: %v", e.Err)
	case e.Detail != "":
		return fmt.Sprintf("analysis request failed (%d): %s", e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("analysis request failed: status %d", e.StatusCode)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError means the service answered but the body was not the
// expected shape.
type ProtocolError struct {
	URL string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed analysis response: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
