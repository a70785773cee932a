package client

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const maxRedirects = 5

var ErrTooManyRedirects = errors.New("stopped after too many redirects")

// CreateHTTPClient initializes an HTTP client with the given timeout that logs every redirect.
func CreateHTTPClient(log *slog.Logger, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}
			log.Debug("Redirected to URL", "URL", req.URL)

			return nil
		},
	}
}
