package ai

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse means the endpoint answered without any candidate text.
var ErrEmptyResponse = errors.New("empty response from text-generation endpoint")

// EndpointError is a non-2xx answer from the text-generation endpoint.
type EndpointError struct {
	StatusCode int
	Body       string
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("text-generation endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// IsUpstream reports whether err came from the endpoint itself rather than
// from the store or the caller.
func IsUpstream(err error) bool {
	var ee *EndpointError
	return errors.As(err, &ee) || errors.Is(err, ErrEmptyResponse)
}
