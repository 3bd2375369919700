package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/c360studio/grompt/llm"
	"github.com/c360studio/grompt/llm/testutil"
	"github.com/c360studio/grompt/optimizer"
	"github.com/c360studio/grompt/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mock *testutil.MockCompletionClient) *httptest.Server {
	t.Helper()
	t.Setenv("GROQ_API_KEY", "gsk_test")

	opt := optimizer.New(mock, optimizer.Defaults{})
	srv := server.New(opt, "groq", nil)

	mux := http.NewServeMux()
	srv.RegisterHandlers(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func postOptimize(t *testing.T, ts *httptest.Server, body any) (*http.Response, map[string]string) {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/optimize", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestOptimize_Basic(t *testing.T) {
	mock := &testutil.MockCompletionClient{
		Responses: []*llm.Response{
			{Content: "Write a short, vivid poem about nature."},
		},
	}
	ts := newTestServer(t, mock)

	resp, body := postOptimize(t, ts, server.OptimizeRequest{Prompt: "write a poem"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Write a short, vivid poem about nature.", body["optimized"])

	instruction := mock.LastRequest().Messages[0].Content
	assert.Contains(t, instruction, "write a poem")
}

func TestOptimize_Advanced(t *testing.T) {
	mock := &testutil.MockCompletionClient{
		Responses: []*llm.Response{{Content: "optimized"}},
	}
	ts := newTestServer(t, mock)

	resp, body := postOptimize(t, ts, server.OptimizeRequest{
		Canvas: &server.CanvasForm{
			Persona:    "technical writer",
			Audience:   "developers",
			Task:       "document the API",
			Steps:      "list endpoints\n\n  describe payloads  \n",
			References: "RFC 9110\nstyle guide",
			Tonality:   "professional",
		},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "optimized", body["optimized"])

	instruction := mock.LastRequest().Messages[0].Content
	// Newline lists are split and trimmed, empties discarded
	assert.Contains(t, instruction, "- list endpoints\n- describe payloads")
	assert.Contains(t, instruction, "References: RFC 9110, style guide")
}

func TestOptimize_AdvancedOverridesPrompt(t *testing.T) {
	mock := &testutil.MockCompletionClient{
		Responses: []*llm.Response{{Content: "ok"}},
	}
	ts := newTestServer(t, mock)

	resp, _ := postOptimize(t, ts, server.OptimizeRequest{
		Prompt: "raw prompt to be ignored",
		Canvas: &server.CanvasForm{Persona: "editor"},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, mock.LastRequest().Messages[0].Content, "raw prompt to be ignored")
}

func TestOptimize_GenerationErrorRenderedInline(t *testing.T) {
	mock := &testutil.MockCompletionClient{Err: errors.New("rate limit exceeded")}
	ts := newTestServer(t, mock)

	resp, body := postOptimize(t, ts, server.OptimizeRequest{Prompt: "p"})

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body["error"], "generation failed:")
	assert.Contains(t, body["error"], "rate limit exceeded")
}

func TestOptimize_EmptyInput(t *testing.T) {
	mock := &testutil.MockCompletionClient{}
	ts := newTestServer(t, mock)

	resp, body := postOptimize(t, ts, server.OptimizeRequest{Prompt: "   "})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
	assert.Equal(t, 0, mock.GetCallCount(), "no provider call for empty input")
}

func TestOptimize_MissingCredential(t *testing.T) {
	mock := &testutil.MockCompletionClient{}
	ts := newTestServer(t, mock)
	t.Setenv("GROQ_API_KEY", "")

	resp, body := postOptimize(t, ts, server.OptimizeRequest{Prompt: "p"})

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body["error"], "GROQ_API_KEY")
	assert.Equal(t, 0, mock.GetCallCount(), "precondition failure must not reach the provider")
}

func TestOptimize_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &testutil.MockCompletionClient{})

	resp, err := http.Get(ts.URL + "/api/optimize")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestOptimize_InvalidJSON(t *testing.T) {
	ts := newTestServer(t, &testutil.MockCompletionClient{})

	resp, err := http.Post(ts.URL+"/api/optimize", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &testutil.MockCompletionClient{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	mock := &testutil.MockCompletionClient{
		Responses: []*llm.Response{{Content: "ok"}},
	}
	ts := newTestServer(t, mock)

	_, _ = postOptimize(t, ts, server.OptimizeRequest{Prompt: "p"})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `grompt_optimize_requests_total{status="ok"} 1`)
	assert.Contains(t, buf.String(), "grompt_optimize_duration_seconds")
}

func TestIndexServed(t *testing.T) {
	ts := newTestServer(t, &testutil.MockCompletionClient{})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Prompt Optimizer")
	assert.Contains(t, buf.String(), "Advanced (Prompt Canvas)")
}
