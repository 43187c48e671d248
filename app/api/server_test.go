package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"scamtrap/app/config"
	"scamtrap/app/service/agent"
	"scamtrap/app/service/detect"
	"scamtrap/app/service/extract"
	"scamtrap/app/service/honeypot"
	"scamtrap/app/service/metrics"
	"scamtrap/app/service/patterns"
	"scamtrap/app/service/store"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Model endpoints point at a closed port so every completion call degrades to
// its heuristic/fallback path.
func testConfig(apiKeys []string) *config.Config {
	model := config.ModelConfig{
		BaseURL: "http://127.0.0.1:9/v1",
		Token:   "test-token",
		Model:   "test-model",
	}

	return &config.Config{
		Server: config.Server{Listen: ":0", APIKeys: apiKeys},
		Redis:  config.Redis{Disabled: true},
		OpenAI: config.OpenAI{Classifier: model, Reply: model},
	}
}

func newServer(t *testing.T, apiKeys []string) *Server {
	t.Helper()

	di := do.New()
	t.Cleanup(func() { _ = di.Shutdown() })

	do.ProvideValue(di, testConfig(apiKeys))
	do.Provide(di, patterns.New)
	do.Provide(di, store.New)
	do.Provide(di, detect.New)
	do.Provide(di, extract.New)
	do.Provide(di, agent.New)
	do.Provide(di, metrics.New)
	do.Provide(di, honeypot.New)
	do.Provide(di, New)

	return do.MustInvoke[*Server](di)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newServer(t, nil)

	resp, err := srv.app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRootEndpoint(t *testing.T) {
	srv := newServer(t, []string{"secret"})

	// Root stays reachable without a key.
	resp, err := srv.app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMissingAPIKey(t *testing.T) {
	srv := newServer(t, []string{"secret"})

	req := httptest.NewRequest("POST", "/honeypot/message", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestInvalidAPIKey(t *testing.T) {
	srv := newServer(t, []string{"secret"})

	req := httptest.NewRequest("POST", "/honeypot/message", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", "wrong")

	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestMessageValidation(t *testing.T) {
	srv := newServer(t, nil)

	req := httptest.NewRequest("POST", "/honeypot/message",
		strings.NewReader(`{"conversation_id": "", "message": ""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 422, resp.StatusCode)
}

func TestMessagePipeline(t *testing.T) {
	srv := newServer(t, []string{"secret"})

	body := `{"conversation_id": "conv-1", "message": "Your KYC is pending. Please share OTP to verify your account. Click here: http://bit.ly/xyz"}`
	req := httptest.NewRequest("POST", "/honeypot/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", "secret")

	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var response honeypot.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))

	assert.True(t, response.ScamDetected)
	assert.NotEmpty(t, response.Reply)
	assert.Equal(t, 2, response.EngagementMetrics.Turns)
	assert.Contains(t, response.Intelligence.URLs, "http://bit.ly/xyz")
}
