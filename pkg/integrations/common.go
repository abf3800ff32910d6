package integrations

import (
	"errors"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request to an extraction app. Apps may
// take a while to compute a subnetwork, so it is looser than a usual API
// timeout.
const DefaultTimeout = 5 * time.Minute

var (
	// ErrNotFound is returned when the app answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned when the app cannot be reached.
	ErrNetwork = errors.New("network error")

	// ErrStatus is returned for any other non-2xx status.
	ErrStatus = errors.New("unexpected status")
)

// NewHTTPClient creates an HTTP client with DefaultTimeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}
