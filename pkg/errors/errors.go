package errors

import "fmt"

// UpstreamError is returned when the admin API answers with a non-success,
// non-throttled status. It is never retried.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream API error: status %d, body: %s", e.Status, e.Body)
}

// RateLimitError is returned when a throttled request is still throttled
// after the configured number of attempts.
type RateLimitError struct {
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("upstream rate limit not lifted after %d attempts", e.Attempts)
}

// MisconfiguredError is returned when a required setting is absent. It is
// raised before any network call is made.
type MisconfiguredError struct {
	Field string
}

func (e *MisconfiguredError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Field)
}
