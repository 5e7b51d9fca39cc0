package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newOpenAIServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClientInvoke(t *testing.T) {
	var req capturedRequest
	srv := newOpenAIServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "Use os.ReadFile."}, "finish_reason": "stop"}]
	}`, &req)

	client := NewOpenAIClient(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	got, err := client.Invoke(context.Background(), []Message{
		{Role: RoleSystem, Content: "be an expert"},
		{Role: RoleUser, Content: "How do I read a file?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Use os.ReadFile.", got)

	assert.Equal(t, DefaultOpenAIModel, req.Model)
	assert.InDelta(t, 0, req.Temperature, 1e-9)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "be an expert", req.Messages[0].Content)
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Equal(t, "How do I read a file?", req.Messages[1].Content)
}

func TestOpenAIClientErrors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		srv := newOpenAIServer(t, http.StatusUnauthorized,
			`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`, nil)
		client := NewOpenAIClient(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

		_, err := client.Invoke(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
		assert.ErrorContains(t, err, "Incorrect API key provided")
	})

	t.Run("no choices", func(t *testing.T) {
		srv := newOpenAIServer(t, http.StatusOK, `{"id": "x", "choices": []}`, nil)
		client := NewOpenAIClient(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1", Model: "gpt-4o"})

		_, err := client.Invoke(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		wantTyp any
	}{
		{name: "default provider", cfg: Config{APIKey: "k"}, wantTyp: &OpenAIClient{}},
		{name: "openai", cfg: Config{Provider: "OpenAI", APIKey: "k"}, wantTyp: &OpenAIClient{}},
		{name: "gemini", cfg: Config{Provider: "gemini", APIKey: "k"}, wantTyp: &GeminiClient{}},
		{name: "openai without key", cfg: Config{Provider: "openai"}, wantErr: ErrMissingAPIKey},
		{name: "gemini without key", cfg: Config{Provider: "gemini"}, wantErr: ErrMissingAPIKey},
		{name: "unknown", cfg: Config{Provider: "llama", APIKey: "k"}, wantErr: ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(ctx, tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantTyp, client)
		})
	}
}

func TestGeminiContents(t *testing.T) {
	system, contents := geminiContents([]Message{
		{Role: RoleSystem, Content: "be a travel expert"},
		{Role: RoleUser, Content: "Where in Kyoto?"},
	})

	assert.Equal(t, "be a travel expert", system)
	require.Len(t, contents, 1)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	require.Len(t, contents[0].Parts, 1)
	assert.Equal(t, "Where in Kyoto?", contents[0].Parts[0].Text)
}

func TestOpenAIClientEmptyUserText(t *testing.T) {
	var req capturedRequest
	srv := newOpenAIServer(t, http.StatusOK,
		`{"id": "x", "choices": [{"index": 0, "message": {"role": "assistant", "content": "Ask me something."}}]}`, &req)
	client := NewOpenAIClient(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

	got, err := client.Invoke(context.Background(), []Message{
		{Role: RoleSystem, Content: "be an expert"},
		{Role: RoleUser, Content: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ask me something.", got)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Empty(t, req.Messages[1].Content)
}

type geminiRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	SystemInstruction struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"systemInstruction"`
	GenerationConfig struct {
		Temperature *float64 `json:"temperature"`
	} `json:"generationConfig"`
}

func newGeminiServer(t *testing.T, body string, captured *geminiRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiClientInvoke(t *testing.T) {
	ctx := context.Background()
	messages := []Message{
		{Role: RoleSystem, Content: "be a travel expert"},
		{Role: RoleUser, Content: "Where in Kyoto?"},
	}

	t.Run("joins parts", func(t *testing.T) {
		var req geminiRequest
		srv := newGeminiServer(t, `{"candidates": [{"content": {"role": "model", "parts": [{"text": "Hello "}, {"text": "world"}]}}]}`, &req)

		client, err := NewClient(ctx, Config{Provider: ProviderGemini, APIKey: "test-key", BaseURL: srv.URL})
		require.NoError(t, err)
		got, err := client.Invoke(ctx, messages)
		require.NoError(t, err)
		assert.Equal(t, "Hello world", got)

		require.Len(t, req.SystemInstruction.Parts, 1)
		assert.Equal(t, "be a travel expert", req.SystemInstruction.Parts[0].Text)
		require.NotNil(t, req.GenerationConfig.Temperature)
		assert.Zero(t, *req.GenerationConfig.Temperature)
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "user", req.Contents[0].Role)
		require.Len(t, req.Contents[0].Parts, 1)
		assert.Equal(t, "Where in Kyoto?", req.Contents[0].Parts[0].Text)
	})

	t.Run("no candidates", func(t *testing.T) {
		srv := newGeminiServer(t, `{"candidates": []}`, nil)

		client, err := NewClient(ctx, Config{Provider: ProviderGemini, APIKey: "test-key", BaseURL: srv.URL})
		require.NoError(t, err)
		_, err = client.Invoke(ctx, messages)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}
