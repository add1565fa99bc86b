// Package httpc holds the HTTP clients used across the showcase.
// Every client here has timeouts; never fall back to http.DefaultClient.
package httpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultKeepAlive      = 30 * time.Second
	DefaultIdleTimeout    = 90 * time.Second

	// maxErrorBody bounds how much of a failed response ends up in an error.
	maxErrorBody = 512
)

// Client is the shared client for short calls to the showcase itself.
var Client = NewClient(DefaultTimeout)

// NewClient returns a client with the given overall timeout. Providers that
// wait on model generation build their own with a longer one.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dialer := &net.Dialer{Timeout: DefaultConnectTimeout, KeepAlive: DefaultKeepAlive}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       DefaultIdleTimeout,
			TLSHandshakeTimeout:   DefaultConnectTimeout,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// StatusError is a response outside the 2xx range.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// Fetch performs a GET with the shared client and returns the body.
func Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return Do(req)
}

// Send performs a request with a JSON body (which may be nil) and returns the
// response body.
func Send(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return Do(req)
}

// Do runs req on the shared client. Non-2xx responses become *StatusError.
func Do(req *http.Request) ([]byte, error) {
	resp, err := Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: msg}
	}
	return data, nil
}
