package tool

import (
	"net/http"
	"time"
)

var (
	DefaultTimeout = 30 * time.Second
	// LongPollTimeout must exceed the Telegram getUpdates poll window so the
	// client does not cut the request short.
	LongPollTimeout = 50 * time.Second

	ConnectionHttpClient *http.Client
	LongPollHttpClient   *http.Client
)

func init() {
	ConnectionHttpClient = NewHTTPClient(DefaultTimeout)
	LongPollHttpClient = NewHTTPClient(LongPollTimeout)
}

// NewHTTPClient creates an HTTP client with pooled connections.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
