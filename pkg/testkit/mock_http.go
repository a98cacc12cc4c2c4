package testkit

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockTransport answers outgoing pkg/httpclient calls (the concierge LLM,
// remote product images) from a scenario's "httprequest" steps.
//
//	mt := testkit.NewMockTransport(scenario)
//	httpclient.DefaultClient.Transport = mt
//	defer httpclient.ResetTransport()
type MockTransport struct {
	strict bool

	mu    sync.Mutex
	steps []MockStep
	hits  []int
	seen  []RecordedRequest
}

// RecordedRequest is one outgoing call the transport intercepted.
type RecordedRequest struct {
	Method string
	URL    string
	Body   []byte
}

func NewMockTransport(s *Scenario) *MockTransport {
	mt := &MockTransport{strict: s.IsMockRequired}
	for _, step := range s.NetUtilMockStep {
		if step.IsMock && step.Method == "httprequest" {
			mt.steps = append(mt.steps, step)
		}
	}
	mt.hits = make([]int, len(mt.steps))
	return mt
}

// RoundTrip serves the first step whose matchUrl prefixes the request URL.
// Unmatched calls fail in strict scenarios and get a 404 otherwise.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}
	target := req.URL.String()

	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.seen = append(mt.seen, RecordedRequest{Method: req.Method, URL: target, Body: body})

	for i, step := range mt.steps {
		if step.matches(target) {
			mt.hits[i]++
			return step.ReturnData.response(req)
		}
	}
	if mt.strict {
		return nil, fmt.Errorf("testkit: no mock for outgoing %s %s", req.Method, target)
	}
	return reply(req, http.StatusNotFound, []byte(`{"error":"no mock configured"}`)), nil
}

// Requests returns the outgoing calls seen so far.
func (mt *MockTransport) Requests() []RecordedRequest {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]RecordedRequest(nil), mt.seen...)
}

// AssertAllCalled reports every step the handler never exercised.
func (mt *MockTransport) AssertAllCalled() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	var errs []error
	for i, step := range mt.steps {
		if mt.hits[i] == 0 {
			errs = append(errs, fmt.Errorf("testkit: mock for %q was never called", step.MatchURL))
		}
	}
	return errs
}

// matches is a prefix test; an empty matchUrl catches every call.
func (s MockStep) matches(url string) bool {
	return strings.HasPrefix(url, s.MatchURL)
}

func (d MockReturnData) response(req *http.Request) (*http.Response, error) {
	code := d.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	body, err := base64.StdEncoding.DecodeString(d.Body)
	if err != nil {
		if body, err = base64.RawStdEncoding.DecodeString(d.Body); err != nil {
			return nil, fmt.Errorf("testkit: mock body is not base64: %w", err)
		}
	}
	return reply(req, code, body), nil
}

func reply(req *http.Request, code int, body []byte) *http.Response {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode:    code,
		Status:        fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
