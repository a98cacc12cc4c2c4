// Package httpclient is the fluent, retry-aware client used for outgoing
// calls: fetching remote product images and talking to the chatbot's LLM
// endpoint.
//
//	resp, err := httpclient.Post(config.LLMBaseURL() + "/chat/completions").
//	    Bearer(config.LLMAPIKey()).
//	    JSON(payload).
//	    Retry(2, 300*time.Millisecond).
//	    Send(ctx)
//
//	var out completion
//	err = resp.Decode(&out)
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/diamantrouge/maison/pkg/logger"
)

var defaultTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// DefaultClient is shared by every outgoing request. Tests swap its
// Transport (see testkit.MockTransport) and restore it with ResetTransport.
var DefaultClient = &http.Client{Transport: defaultTransport}

// ResetTransport restores the production transport on DefaultClient.
func ResetTransport() {
	DefaultClient.Transport = defaultTransport
}

// ErrTooLarge is returned when a response body exceeds MaxBytes.
var ErrTooLarge = errors.New("httpclient: response body too large")

// StatusError is returned by Response.Throw for non-2xx answers.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpclient: upstream answered %d: %s", e.Code, e.Body)
}

// Request is a fluent HTTP request builder.
type Request struct {
	method    string
	url       string
	headers   http.Header
	body      []byte
	bodyErr   error
	timeout   time.Duration
	retries   int
	retryWait time.Duration
	maxBytes  int64
}

func Get(url string) *Request  { return newRequest(http.MethodGet, url) }
func Post(url string) *Request { return newRequest(http.MethodPost, url) }

func newRequest(method, url string) *Request {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("User-Agent", "diamant-rouge/1.0")
	return &Request{
		method:    method,
		url:       url,
		headers:   h,
		timeout:   30 * time.Second,
		retries:   1,
		retryWait: 500 * time.Millisecond,
		maxBytes:  10 << 20,
	}
}

func (r *Request) Header(key, value string) *Request {
	r.headers.Set(key, value)
	return r
}

// Bearer sets the Authorization: Bearer <token> header.
func (r *Request) Bearer(token string) *Request {
	if token == "" {
		return r
	}
	return r.Header("Authorization", "Bearer "+token)
}

// JSON marshals v as the request body.
func (r *Request) JSON(v any) *Request {
	b, err := json.Marshal(v)
	if err != nil {
		r.bodyErr = fmt.Errorf("httpclient: marshal body: %w", err)
		return r
	}
	r.body = b
	r.headers.Set("Content-Type", "application/json")
	return r
}

// Timeout sets the per-attempt timeout.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// MaxBytes caps the accepted response size.
func (r *Request) MaxBytes(n int64) *Request {
	r.maxBytes = n
	return r
}

// Retry sets the total number of attempts and the initial backoff, which
// doubles after each failure. Only transport errors and 5xx are retried.
func (r *Request) Retry(n int, wait time.Duration) *Request {
	if n < 1 {
		n = 1
	}
	r.retries = n
	r.retryWait = wait
	return r
}

// Send executes the request. A non-2xx answer is not an error here; call
// Throw to turn it into one.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	if r.bodyErr != nil {
		return nil, r.bodyErr
	}

	var lastErr error
	backoff := r.retryWait
	for attempt := 1; attempt <= r.retries; attempt++ {
		resp, err := r.do(ctx)
		switch {
		case err == nil && resp.StatusCode < 500:
			return resp, nil
		case err == nil:
			lastErr = &StatusError{Code: resp.StatusCode, Body: truncate(resp.Raw)}
			if attempt == r.retries {
				return resp, nil
			}
		case errors.Is(err, ErrTooLarge), ctx.Err() != nil:
			return nil, err
		default:
			lastErr = err
		}

		if attempt < r.retries {
			logger.WithCtx(ctx).Warn("httpclient: request failed, retrying",
				"url", r.url, "attempt", attempt, "backoff", backoff.String(), "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("httpclient: %d attempts failed for %s %s: %w", r.retries, r.method, r.url, lastErr)
}

func (r *Request) do(ctx context.Context) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}
	req.Header = r.headers.Clone()

	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}
	if int64(len(raw)) > r.maxBytes {
		return nil, ErrTooLarge
	}

	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Raw: raw}, nil
}

func truncate(b []byte) string {
	if len(b) > 256 {
		return string(b[:256]) + "…"
	}
	return string(b)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into dest.
func (r *Response) Decode(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("httpclient: decode JSON: %w", err)
	}
	return nil
}

// Throw returns a *StatusError when the status is not 2xx.
func (r *Response) Throw() error {
	if !r.OK() {
		return &StatusError{Code: r.StatusCode, Body: truncate(r.Raw)}
	}
	return nil
}
