package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dheerajkumar69/AutoReadme/internal/types"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

func TestOpenAIProvider_Synthesize(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		expectedSkip bool
		expectError  bool
	}{
		{
			name:    "plain JSON answer",
			content: `{"skip":false,"comment":"Applies the rate as a percentage of the amount.","confidence":0.9}`,
		},
		{
			name:         "skip signal",
			content:      `{"skip":true,"comment":"","confidence":0.9,"reasoning":"self-explanatory"}`,
			expectedSkip: true,
		},
		{
			name:        "prose answer",
			content:     "Sure, here is a comment for you.",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/chat/completions", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

				var req openAIRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "test-model", req.Model)
				require.Len(t, req.Messages, 2)
				assert.Equal(t, "system", req.Messages[0].Role)
				assert.Contains(t, req.Messages[1].Content, types.StyleShort.Directive())

				w.WriteHeader(http.StatusOK)
				require.NoError(t, json.NewEncoder(w).Encode(chatResponse(tt.content)))
			}))
			defer server.Close()

			client := NewResilientClient(ClientConfig{BaseURL: server.URL, APIKey: "key"}, nil)
			provider := NewOpenAIProvider(client, "test-model")

			raw, err := provider.Synthesize(context.Background(), types.SynthesizeRequest{
				Diff:           "+return amt*rate/100;",
				Language:       "javascript",
				Style:          types.StyleShort,
				StyleDirective: types.StyleShort.Directive(),
			})

			if tt.expectError {
				assert.Equal(t, KindMalformedResponse, KindOf(err))
				return
			}
			require.NoError(t, err)

			var resp types.SynthesizeResponse
			require.NoError(t, json.Unmarshal(raw, &resp))
			assert.Equal(t, tt.expectedSkip, resp.Skip)
		})
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider(NewResilientClient(ClientConfig{BaseURL: server.URL}, nil), "")
	_, err := provider.Classify(context.Background(), types.ClassifyRequest{Diff: "+x"})
	assert.Equal(t, KindMalformedResponse, KindOf(err))
	assert.Equal(t, "openai:llama.cpp", provider.Name())
}

func TestServiceGenerator(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch r.URL.Path {
		case "/classify":
			assert.Equal(t, "classify", body["task"])
			assert.Equal(t, "function a(){}\n", body["contextPrefix"])
			_, _ = w.Write([]byte(`{"type":"feature","isMeaningful":true,"isPublicApi":true,"confidence":0.8}`))
		case "/synthesize":
			assert.Equal(t, "synthesize", body["task"])
			assert.Equal(t, float64(2), body["lineNumber"])
			assert.Equal(t, "short", body["style"])
			_, _ = w.Write([]byte(`{"skip":false,"comment":"Applies the rate as a percentage.","confidence":0.9}`))
		}
	}))
	defer server.Close()

	client := NewResilientClient(ClientConfig{BaseURL: server.URL}, nil)
	gen, err := NewProvider(ProviderConfig{Type: ProviderService}, client)
	require.NoError(t, err)
	assert.Equal(t, "service", gen.Name())
	assert.True(t, gen.Online())

	_, err = gen.Classify(context.Background(), types.ClassifyRequest{ContextPrefix: "function a(){}\n"})
	require.NoError(t, err)
	_, err = gen.Synthesize(context.Background(), types.SynthesizeRequest{LineNumber: 2, Style: types.StyleShort})
	require.NoError(t, err)

	assert.Equal(t, []string{"/classify", "/synthesize"}, paths)
}

func TestNewProvider(t *testing.T) {
	client := NewResilientClient(ClientConfig{BaseURL: "http://localhost"}, nil)

	tests := []struct {
		name        string
		config      ProviderConfig
		expectError bool
	}{
		{"default is service", ProviderConfig{}, false},
		{"ollama", ProviderConfig{Type: ProviderOllama, Model: "qwen2.5-coder:7b"}, false},
		{"ollama without model", ProviderConfig{Type: ProviderOllama}, true},
		{"ollama with unreliable model", ProviderConfig{Type: ProviderOllama, Model: "codellama:13b"}, true},
		{"openai", ProviderConfig{Type: ProviderOpenAI, Model: "gpt-4o-mini"}, false},
		{"unknown", ProviderConfig{Type: "gemini"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewProvider(tt.config, client)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, gen)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, gen)
		})
	}
}
