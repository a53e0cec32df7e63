package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 10 * time.Second

// UserAgent is sent with every request. GitHub rejects requests without one,
// and some mirrors serve different content to non-browser agents.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

var (
	// ErrNotFound is returned when a branch, tree, or file doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned for 403 and 429 responses.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnknownFormat is returned when a response body is in an encoding the
	// client does not understand.
	ErrUnknownFormat = errors.New("unknown content format")
)

// StatusError describes a non-200 response. It wraps one of the sentinel
// errors so callers can classify it with errors.Is.
type StatusError struct {
	Code int
	Body string // first bytes of the response body
	Err  error
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: status %d", e.Err, e.Code)
	}
	return fmt.Sprintf("%v: status %d: %s", e.Err, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return e.Err }

// NewHTTPClient creates an HTTP client with the given per-request timeout.
// A non-positive timeout selects [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(h string, now time.Time) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if t, err := http.ParseTime(h); err == nil {
		return max(t.Sub(now), 0)
	}
	return 0
}
