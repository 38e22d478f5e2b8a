package recommend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsplashImages_Search(t *testing.T) {
	var gotQuery map[string][]string
	var gotAuth, gotVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Accept-Version")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 40, "results": [{"id": "x", "urls": {"thumb": "https://images.unsplash.com/photo-2?w=200", "full": "https://images.unsplash.com/photo-2"}}]}`))
	}))
	defer server.Close()

	images := NewUnsplashImages(UnsplashConfig{
		HTTPClient: server.Client(),
		AccessKey:  "test-key",
		Endpoint:   server.URL,
	})

	img, ok := images.Search(context.Background(), "camping tent", 2)
	require.True(t, ok)
	assert.Equal(t, "https://images.unsplash.com/photo-2?w=200", img)
	assert.Equal(t, "Client-ID test-key", gotAuth)
	assert.Equal(t, "v1", gotVersion)
	assert.Equal(t, map[string][]string{
		"query":       {"camping tent"},
		"per_page":    {"1"},
		"page":        {"2"},
		"orientation": {"squarish"},
	}, gotQuery)
}

func TestUnsplashImages_NoAccessKey(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	images := NewUnsplashImages(UnsplashConfig{HTTPClient: server.Client(), Endpoint: server.URL})
	_, ok := images.Search(context.Background(), "tent", 1)
	assert.False(t, ok)
	assert.Zero(t, hits.Load())
}

func TestUnsplashImages_Failures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"errors":["OAuth error"]}`},
		{name: "rate limited", status: http.StatusForbidden, body: `Rate Limit Exceeded`},
		{name: "malformed body", status: http.StatusOK, body: `<html>`},
		{name: "no results", status: http.StatusOK, body: `{"total": 0, "results": []}`},
		{name: "empty thumb", status: http.StatusOK, body: `{"results": [{"urls": {}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			images := NewUnsplashImages(UnsplashConfig{
				HTTPClient: server.Client(),
				AccessKey:  "k",
				Endpoint:   server.URL,
			})
			img, ok := images.Search(context.Background(), "tent", 1)
			assert.False(t, ok)
			assert.Empty(t, img)
		})
	}
}

func TestUnsplashImages_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`{"results": [{"urls": {"thumb": "https://img/late"}}]}`))
	}))
	defer server.Close()

	images := NewUnsplashImages(UnsplashConfig{
		HTTPClient: server.Client(),
		AccessKey:  "k",
		Endpoint:   server.URL,
		Timeout:    50 * time.Millisecond,
	})
	_, ok := images.Search(context.Background(), "tent", 1)
	assert.False(t, ok)
}

func TestResolver_WithHTTPLookups(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/html/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`href="https://www.amazon.com/Trail-Shoe/dp/B07ZPKN6YR"`))
	})
	mux.HandleFunc("/search/photos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(`{"results": [{"urls": {"thumb": "https://img/shoe"}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"results": []}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	r := NewResolver(
		NewDuckDuckGoLinks(DuckDuckGoConfig{HTTPClient: server.Client(), Endpoint: server.URL + "/html/"}),
		NewUnsplashImages(UnsplashConfig{HTTPClient: server.Client(), AccessKey: "k", Endpoint: server.URL + "/search/photos"}),
	)

	got := r.Resolve(context.Background(), []any{
		map[string]any{"name": "Trail Shoes", "reason": "runs", "url": "https://shoes.example.com"},
		map[string]any{"name": "Trail Shoes", "reason": "runs more"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "https://www.amazon.com/Trail-Shoe/dp/B07ZPKN6YR", got[0].URL)
	assert.Equal(t, "https://img/shoe", got[0].Img)
	assert.Equal(t, Placeholder, got[1].Img)
}
