package testkit

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/pkg/mail"
)

// Wildcard in an expected response file matches any actual value.
const Wildcard = "<any>"

// AssertStatusCode checks the response code.
func AssertStatusCode(t *testing.T, scenario *Scenario, got int) {
	t.Helper()
	assert.Equal(t, scenario.ExpectedCode, got, "[%s] HTTP status code mismatch", scenario.Name)
}

// AssertJSONBody compares the actual body with the expected file after
// normalising both through JSON. Values equal to Wildcard are not compared.
func AssertJSONBody(t *testing.T, scenario *Scenario, expected, actual []byte) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	var expVal, actVal any
	require.NoError(t, json.Unmarshal(expected, &expVal),
		"[%s] expected response file is not valid JSON", scenario.Name)

	if !assert.NoError(t, json.Unmarshal(actual, &actVal),
		"[%s] actual response is not valid JSON\nbody: %s", scenario.Name, string(actual)) {
		return
	}

	assert.Equal(t, expVal, maskWildcards(expVal, actVal), "[%s] response body mismatch", scenario.Name)
}

// maskWildcards copies the expected wildcards into actual so assert.Equal
// ignores them.
func maskWildcards(expected, actual any) any {
	switch exp := expected.(type) {
	case string:
		if exp == Wildcard {
			return Wildcard
		}
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return actual
		}
		out := make(map[string]any, len(act))
		for k, v := range act {
			out[k] = v
			if ev, ok := exp[k]; ok {
				out[k] = maskWildcards(ev, v)
			}
		}
		return out
	case []any:
		act, ok := actual.([]any)
		if !ok {
			return actual
		}
		out := make([]any, len(act))
		for i, v := range act {
			out[i] = v
			if i < len(exp) {
				out[i] = maskWildcards(exp[i], v)
			}
		}
		return out
	}
	return actual
}

// AssertContains checks every responseContains fragment.
func AssertContains(t *testing.T, scenario *Scenario, body string) {
	t.Helper()
	for _, frag := range scenario.ResponseContains {
		assert.Contains(t, body, frag, "[%s] response body", scenario.Name)
	}
}

// AssertMocksAllCalled fails for every unused httprequest step and every
// sendmail step without a matching message.
func AssertMocksAllCalled(t *testing.T, scenario *Scenario, mt *MockTransport, outbox *mail.Fake) {
	t.Helper()

	for _, err := range mt.AssertAllCalled() {
		assert.NoError(t, err, "[%s]", scenario.Name)
	}
	for _, step := range scenario.NetUtilMockStep {
		if step.Method != "sendmail" || !step.IsMock {
			continue
		}
		sent := outbox.Sent()
		if step.MatchURL != "" {
			sent = outbox.SentTo(step.MatchURL)
		}
		assert.NotEmpty(t, sent, "[%s] %s", scenario.Name, fmt.Sprintf("expected mail to %q", step.MatchURL))
	}
}
