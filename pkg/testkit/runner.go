package testkit

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/diamantrouge/maison/pkg/httpclient"
	"github.com/diamantrouge/maison/pkg/mail"
	"github.com/diamantrouge/maison/pkg/queue"
)

// Run executes the scenario file at path against handler as a subtest.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", path, err)
	}
	t.Run(s.Name, func(t *testing.T) {
		RunScenario(t, handler, s)
	})
}

// RunDir runs every scenario found in dir as a subtest.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	scenarios, errs := LoadAllFromDir(dir)
	for _, err := range errs {
		t.Error(err)
	}
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			RunScenario(t, handler, s)
		})
	}
}

// RunScenario fires one loaded scenario. Outgoing HTTP goes through a
// MockTransport, mail is captured by a mail.Fake and queued jobs run inline
// so their side-effects are visible when the request returns.
func RunScenario(t *testing.T, handler http.Handler, s *Scenario) *httptest.ResponseRecorder {
	t.Helper()

	body, err := s.RequestBodyBytes()
	if err != nil {
		t.Fatalf("[%s] read request body: %v", s.Name, err)
	}

	mt := NewMockTransport(s)
	httpclient.DefaultClient.Transport = mt
	defer httpclient.ResetTransport()

	outbox := &mail.Fake{}
	mail.SetTransport(outbox)
	defer mail.SetTransport(nil)

	queue.SetSync(true)
	defer queue.SetSync(false)

	req := httptest.NewRequest(strings.ToUpper(s.RequestMethod), s.RequestURL, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)

	if p := s.ResponseBodyPath(); p != "" {
		expected, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("[%s] read response file %q: %v", s.Name, p, err)
		} else {
			AssertJSONBody(t, s, expected, rec.Body.Bytes())
		}
	}
	AssertContains(t, s, rec.Body.String())
	AssertMocksAllCalled(t, s, mt, outbox)
	return rec
}
