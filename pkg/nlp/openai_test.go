package nlp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, status int, body string, inspect func(map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if inspect != nil {
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			inspect(req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAICompatibleStructuredOutput(t *testing.T) {
	srv := chatServer(t, http.StatusOK,
		`{"model":"llama3","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"topics\":[]}"}}],"usage":{"prompt_tokens":5,"completion_tokens":3,"total_tokens":8}}`,
		func(req map[string]any) {
			assert.Equal(t, "llama3", req["model"])
			format := req["response_format"].(map[string]any)
			assert.Equal(t, "json_object", format["type"])
			msgs := req["messages"].([]any)
			last := msgs[len(msgs)-1].(map[string]any)
			assert.Contains(t, last["content"], "valid JSON only")
		})

	c, err := NewOpenAIClient("", Config{Model: "llama3", BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := c.ChatWithStructuredOutput(context.Background(), []Message{
		NewSystemMessage("Classify."),
		NewUserMessage("1. great"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"topics":[]}`, resp.Content)
	require.NotNil(t, resp.TokensUsed)
	assert.Equal(t, 8, resp.TokensUsed.TotalTokens)
}

func TestOpenAIRateLimit(t *testing.T) {
	srv := chatServer(t, http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, nil)

	c, err := NewOpenAIClient("k", Config{BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), []Message{NewUserMessage("hi")})
	assert.ErrorIs(t, err, ErrRateLimit)
	assert.True(t, IsRateLimit(err))

	var ce *CompletionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, openai.GPT4oMini, ce.Model)
	assert.Contains(t, err.Error(), "slow down")
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"choices":[]}`, nil)

	c, err := NewOpenAIClient("", Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), []Message{NewUserMessage("hi")})
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.False(t, IsRateLimit(err))
}

func TestOpenAIRefusal(t *testing.T) {
	srv := chatServer(t, http.StatusOK,
		`{"model":"llama3","choices":[{"index":0,"finish_reason":"content_filter","message":{"role":"assistant","content":""}}]}`, nil)

	c, err := NewOpenAIClient("", Config{Model: "llama3", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), []Message{NewUserMessage("hi")})
	assert.ErrorIs(t, err, ErrRefusal)
	assert.Equal(t, "completion refused (model llama3): blocked by content filter", err.Error())
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	c, err := NewOpenAIClient("k", Config{})
	require.NoError(t, err)
	assert.Equal(t, openai.GPT4oMini, c.Model())
}

func TestBaseURLValidation(t *testing.T) {
	_, err := NewOpenAIClient("", Config{BaseURL: "localhost:11434"})
	assert.Error(t, err)

	_, err = NewOpenAIClient("", Config{BaseURL: "ftp://host"})
	assert.Error(t, err)

	assert.True(t, hasAPIPath("http://host/v1"))
	assert.False(t, hasAPIPath("http://host"))
}
