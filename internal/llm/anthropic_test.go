package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/orderlens/internal/common"
)

func TestNewAnthropicClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid config", config: Config{APIKey: "test-key"}},
		{name: "missing API key", config: Config{APIKey: ""}, wantErr: true},
		{
			name: "custom model and settings",
			config: Config{
				APIKey:      "test-key",
				Model:       "claude-3-opus-20240229",
				Temperature: 0.5,
				MaxTokens:   200,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newAnthropicClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func TestAnthropicClient_Complete(t *testing.T) {
	tests := []struct {
		name          string
		response      string
		want          string
		statusCode    int
		wantErr       bool
		wantRetryable bool
	}{
		{
			name:       "successful completion",
			statusCode: http.StatusOK,
			response:   `{"id": "msg_1", "type": "message", "role": "assistant", "content": [{"type": "text", "text": "{\"profile\": {}}"}], "stop_reason": "end_turn"}`,
			want:       `{"profile": {}}`,
		},
		{
			name:       "text blocks are concatenated",
			statusCode: http.StatusOK,
			response:   `{"content": [{"type": "text", "text": "{\"a\":"}, {"type": "tool_use"}, {"type": "text", "text": " 1}"}]}`,
			want:       `{"a": 1}`,
		},
		{
			name:       "no content in response",
			statusCode: http.StatusOK,
			response:   `{"content": []}`,
			wantErr:    true,
		},
		{
			name:       "malformed response",
			statusCode: http.StatusOK,
			response:   `not json`,
			wantErr:    true,
		},
		{
			name:          "overloaded",
			statusCode:    529,
			response:      `{"type": "error", "error": {"type": "overloaded_error"}}`,
			wantErr:       true,
			wantRetryable: true,
		},
		{
			name:       "unauthorized",
			statusCode: http.StatusUnauthorized,
			response:   `{"type": "error", "error": {"type": "authentication_error"}}`,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured anthropicRequest
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/messages", r.URL.Path)
				assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
				assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL + "/", HTTPClient: server.Client()})
			require.NoError(t, err)

			got, err := client.Complete(context.Background(), Request{System: "sys", User: "orders"})

			assert.Equal(t, DefaultAnthropicModel, captured.Model)
			assert.Equal(t, "sys", captured.System)
			assert.Equal(t, 4096, captured.MaxTokens)
			assert.Nil(t, captured.Temperature)
			assert.Equal(t, []anthropicMessage{{Role: "user", Content: "orders"}}, captured.Messages)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantRetryable, common.IsRetryable(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnthropicClient_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "k", BaseURL: server.URL, HTTPClient: server.Client()})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), Request{User: "u"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRateLimit))
	assert.True(t, common.IsRetryable(err))
}
