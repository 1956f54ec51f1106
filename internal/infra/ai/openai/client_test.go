package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/medinsight/internal/domain/ai"
)

func testServer(t *testing.T, status int, content string, seen *map[string]any) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewClientWithConfig(cfg, "gpt-4o")
}

func TestCompleteJSONUsesJSONMode(t *testing.T) {
	var body map[string]any
	c := testServer(t, http.StatusOK, `{"ok":true}`, &body)

	out, err := c.CompleteJSON(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, "json_object", body["response_format"].(map[string]any)["type"])
	assert.EqualValues(t, defaultMaxTokens, body["max_tokens"])
}

func TestReadImageSendsDataURL(t *testing.T) {
	var body map[string]any
	c := testServer(t, http.StatusOK, "Glucose 5.1 mmol/L", &body)

	out, err := c.ReadImage(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "Glucose 5.1 mmol/L", out)

	raw, _ := json.Marshal(body["messages"])
	assert.True(t, strings.Contains(string(raw), "data:image/png;base64,iVBORw=="), string(raw))
}

func TestRateLimitIsQuotaAndTransport(t *testing.T) {
	c := testServer(t, http.StatusTooManyRequests, "", nil)
	_, err := c.CompleteJSON(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, ai.ErrTransport)
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestReasoningModelLimits(t *testing.T) {
	req := openai.ChatCompletionRequest{}
	setLimits(&req, "o3-mini", 100, 0.3)
	assert.Equal(t, 100, req.MaxCompletionTokens)
	assert.Zero(t, req.MaxTokens)
	assert.Zero(t, req.Temperature)

	req = openai.ChatCompletionRequest{}
	setLimits(&req, "gpt-4o", 100, 0.3)
	assert.Equal(t, 100, req.MaxTokens)
	assert.Equal(t, float32(0.3), req.Temperature)

	req = openai.ChatCompletionRequest{}
	setLimits(&req, "gpt-4o", 100, 0)
	assert.Greater(t, req.Temperature, float32(0))
	assert.Less(t, req.Temperature, float32(1e-6))
}
