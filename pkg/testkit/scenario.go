// Package testkit drives REST API tests from JSON scenario files.
//
// A scenario describes the request to fire, the expected status and body,
// and the outgoing side-effects to intercept (HTTP calls, mail):
//
//	testdata/chatbot/
//	  ask_ok.json          ← scenario
//	  ask_ok_req.json      ← request body
//	  ask_ok_res.json      ← expected response body
//
//	func TestChatbotScenarios(t *testing.T) {
//	    testkit.RunDir(t, handler, "testdata/chatbot")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Scenario describes a single REST API test case loaded from a JSON file.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestFileName string            `json:"requestFileName"` // relative to the scenario file
	RequestBody     json.RawMessage   `json:"requestBody"`     // inline alternative to requestFileName
	Headers         map[string]string `json:"headers"`

	ExpectedCode     int      `json:"expectedCode"`
	ResponseFileName string   `json:"responseFileName"`
	ResponseContains []string `json:"responseContains"`

	// IsMockRequired fails the scenario on any outgoing HTTP call without a
	// matching step.
	IsMockRequired bool `json:"isMockRequired"`

	NetUtilMockStep []MockStep `json:"netUtilMockStep"`

	dir string
}

// MockStep describes one intercepted outgoing call.
//
//	"httprequest": answers pkg/httpclient calls whose URL starts with matchUrl
//	"sendmail":    asserts that mail was sent (to matchUrl when it is set)
type MockStep struct {
	Method     string         `json:"method"`
	IsMock     bool           `json:"isMock"`
	MatchURL   string         `json:"matchUrl"`
	ReturnData MockReturnData `json:"returnData"`
}

// MockReturnData is the synthetic response for a mock step. Body is
// base64-encoded.
type MockReturnData struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	for i, step := range s.NetUtilMockStep {
		switch step.Method {
		case "httprequest", "sendmail":
		default:
			return fmt.Errorf("netUtilMockStep[%d]: unknown method %q", i, step.Method)
		}
	}
	return nil
}

// RequestBodyBytes returns the request body from requestFileName or the
// inline requestBody, or nil.
func (s *Scenario) RequestBodyBytes() ([]byte, error) {
	if s.RequestFileName != "" {
		return os.ReadFile(s.resolve(s.RequestFileName))
	}
	if len(s.RequestBody) > 0 {
		return s.RequestBody, nil
	}
	return nil, nil
}

// ResponseBodyPath returns the absolute path of the expected response file,
// or "" when none is set.
func (s *Scenario) ResponseBodyPath() string {
	if s.ResponseFileName == "" {
		return ""
	}
	return s.resolve(s.ResponseFileName)
}

func (s *Scenario) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// LoadAllFromDir loads every scenario in dir, skipping the *_req.json and
// *_res.json body files.
func LoadAllFromDir(dir string) ([]*Scenario, []error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		return nil, []error{fmt.Errorf("testkit: no scenario files found in %q", dir)}
	}
	sort.Strings(entries)

	var (
		scenarios []*Scenario
		errs      []error
	)
	for _, path := range entries {
		if isBodyFile(path) {
			continue
		}
		s, err := LoadScenario(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, errs
}

func isBodyFile(path string) bool {
	base := filepath.Base(path)
	n := len(base)
	return n > 9 && (base[n-9:] == "_req.json" || base[n-9:] == "_res.json")
}
