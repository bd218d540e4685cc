package generate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpggio/genai-tracker/internal/generate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plan = "We fine-tune a small model on clinical notes to summarize discharge letters."

func TestRequestValidate(t *testing.T) {
	assert.ErrorIs(t, generate.Request{ResearchPlan: "too short"}.Validate(), generate.ErrPlanTooShort)
	assert.ErrorIs(t, generate.Request{ResearchPlan: "   " + strings.Repeat(" ", 40)}.Validate(), generate.ErrPlanTooShort)
	assert.NoError(t, generate.Request{ResearchPlan: strings.Repeat("a", generate.MinPlanLength)}.Validate())
}

func TestRequestValidate_LengthBoundary(t *testing.T) {
	short := strings.Repeat("a", generate.MinPlanLength-1)
	assert.ErrorIs(t, generate.Request{ResearchPlan: short}.Validate(), generate.ErrPlanTooShort)
	assert.ErrorIs(t, generate.Request{ResearchPlan: "  " + short + "\n"}.Validate(), generate.ErrPlanTooShort)

	// Length counts characters, not bytes.
	assert.ErrorIs(t, generate.Request{ResearchPlan: strings.Repeat("é", generate.MinPlanLength-1)}.Validate(), generate.ErrPlanTooShort)
	assert.NoError(t, generate.Request{ResearchPlan: strings.Repeat("é", generate.MinPlanLength)}.Validate())

	var calls atomic.Int32
	srv := fakeCompletions(t, "{}", &calls)
	client := generate.NewClient(generate.ClientConfig{BaseURL: srv.URL, APIKey: "key", Model: "m"}, nil)
	_, err := client.Generate(context.Background(), generate.Request{ResearchPlan: short})
	assert.ErrorIs(t, err, generate.ErrPlanTooShort)
	assert.Zero(t, calls.Load())
}

func TestRequestNormalized(t *testing.T) {
	req := generate.Request{ResearchPlan: "  " + plan + "  "}.Normalized()
	assert.Equal(t, plan, req.ResearchPlan)
	assert.Equal(t, generate.DefaultStage, req.ProjectStage)
}

func TestModelConfigWithFallbacks(t *testing.T) {
	cfg := generate.ModelConfig{}.WithFallbacks()
	assert.Equal(t, "grok-4", cfg.ModelName)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 900, cfg.MaxTokens)
	assert.Equal(t, 1.0, cfg.TopP)

	kept := generate.ModelConfig{ModelName: "m", Temperature: 0.2, MaxTokens: 10, TopP: 0.5}.WithFallbacks()
	assert.Equal(t, "m", kept.ModelName)
	assert.Equal(t, 0.2, kept.Temperature)
}

func TestBuildPrompts(t *testing.T) {
	req := generate.Request{
		ResearchPlan: plan,
		ProjectStage: "Evaluation",
		Config:       generate.ModelConfig{SystemPrompt: "Be brief."},
	}
	system, user := generate.BuildPrompts(req)
	assert.Contains(t, system, "responsible AI")
	assert.True(t, strings.HasSuffix(system, "Be brief."))
	assert.Contains(t, user, "Project stage: Evaluation")
	assert.Contains(t, user, plan)
	assert.Contains(t, user, `"systemPrompt":"Be brief."`)
}

func TestNewResponse(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	resp := generate.NewResponse("Sure: {\"items\":[{\"text\":\"a\"}]}", "model-x", "Planning", now)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(resp.Checklist, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0]["text"])
	assert.Equal(t, "model-x", resp.Model)

	resp = generate.NewResponse("- just a line", "model-x", "", now)
	var raw string
	require.NoError(t, json.Unmarshal(resp.Checklist, &raw))
	assert.Equal(t, "- just a line", raw)
}

func fakeCompletions(t *testing.T, content string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"model":   "model-x",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientGenerate(t *testing.T) {
	var calls atomic.Int32
	srv := fakeCompletions(t, `{"items":[{"category":"Data","text":"Document the dataset"}]}`, &calls)

	client := generate.NewClient(generate.ClientConfig{BaseURL: srv.URL, APIKey: "key", Model: "model-x"}, nil)
	resp, err := client.Generate(context.Background(), generate.Request{ResearchPlan: plan})
	require.NoError(t, err)
	assert.Equal(t, "model-x", resp.Model)
	assert.Equal(t, generate.DefaultStage, resp.ProjectStage)
	assert.Contains(t, string(resp.Checklist), "Document the dataset")
	assert.EqualValues(t, 1, calls.Load())
}

func TestClientGenerate_NoNetworkOnInvalidInput(t *testing.T) {
	var calls atomic.Int32
	srv := fakeCompletions(t, "{}", &calls)

	client := generate.NewClient(generate.ClientConfig{BaseURL: srv.URL, APIKey: "key", Model: "m"}, nil)
	_, err := client.Generate(context.Background(), generate.Request{ResearchPlan: "short"})
	assert.ErrorIs(t, err, generate.ErrPlanTooShort)

	noKey := generate.NewClient(generate.ClientConfig{BaseURL: srv.URL, Model: "m"}, nil)
	assert.False(t, noKey.HasKey())
	_, err = noKey.Generate(context.Background(), generate.Request{ResearchPlan: plan})
	assert.ErrorIs(t, err, generate.ErrMissingAPIKey)
	assert.Zero(t, calls.Load())
}

func TestClientGenerate_EmptyContent(t *testing.T) {
	var calls atomic.Int32
	srv := fakeCompletions(t, "   ", &calls)

	client := generate.NewClient(generate.ClientConfig{BaseURL: srv.URL, APIKey: "key", Model: "m"}, nil)
	_, err := client.Generate(context.Background(), generate.Request{ResearchPlan: plan})
	assert.ErrorIs(t, err, generate.ErrEmptyResponse)
}

func TestHTTPClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, generate.ChecklistPath, r.URL.Path)
		var req generate.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, plan, req.ResearchPlan)
		_ = json.NewEncoder(w).Encode(generate.NewResponse(`[{"text":"x"}]`, "m", req.ProjectStage, time.Now()))
	}))
	defer srv.Close()

	resp, err := generate.NewHTTPClient(srv.URL, time.Second).Generate(context.Background(), generate.Request{ResearchPlan: plan})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"text":"x"}]`, string(resp.Checklist))
}

func TestHTTPClientGenerate_ErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(generate.ErrorResponse{Error: "Empty response from model"})
	}))
	defer srv.Close()

	_, err := generate.NewHTTPClient(srv.URL, time.Second).Generate(context.Background(), generate.Request{ResearchPlan: plan})
	var apiErr *generate.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Empty response from model", apiErr.Message)
}
