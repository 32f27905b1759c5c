// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// defaultTimeout applies when a stage config leaves the timeout unset.
const defaultTimeout = 30 * time.Second

// errorBodyLimit caps how much of an upstream error body is read into
// an error message.
const errorBodyLimit = 512

// NewClient returns an http.Client with the given per-integration timeout.
// A zero timeout falls back to 30 s. The pipeline performs no automatic
// retries: a timeout or transport failure surfaces to the caller as-is.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// ErrorFromResponse builds a short error for a non-2xx response, including
// a bounded snippet of the body. The response body is consumed; the caller
// retains responsibility for closing it.
func ErrorFromResponse(service string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		return fmt.Errorf("%s returned HTTP %d", service, resp.StatusCode)
	}
	return fmt.Errorf("%s returned HTTP %d: %s", service, resp.StatusCode, msg)
}

// DrainClose discards any unread body and closes it, letting the
// transport reuse the connection.
func DrainClose(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
