package recommend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuckDuckGoLinks_Lookup(t *testing.T) {
	var gotQuery, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<a class="result__a" href="/l/?uddg=https%3A%2F%2Fwww.amazon.com%2FHydro-Flask-Bottle%2Fdp%2FB01ACATW7E%3Fref%3Dx">Hydro Flask</a>` +
			`<a href="https%3A%2F%2Fwww.amazon.com%2FOther%2Fdp%2FB000000000">Other</a>`))
	}))
	defer server.Close()

	links := NewDuckDuckGoLinks(DuckDuckGoConfig{
		HTTPClient: server.Client(),
		Endpoint:   server.URL,
	})

	link, ok := links.Lookup(context.Background(), "water bottle")
	require.True(t, ok)
	assert.Equal(t, "https://www.amazon.com/Hydro-Flask-Bottle/dp/B01ACATW7E", link)
	assert.Equal(t, "water bottle site:amazon.com/dp", gotQuery)
	assert.Equal(t, userAgent, gotAgent)
	assert.True(t, Amazon.IsProductPage(link))
}

func TestDuckDuckGoLinks_StrayPercentInPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<div>Save 50% on bottles</div>` +
			`<a class="result__a" href="/l/?uddg=https%3A%2F%2Fwww.amazon.com%2FHydro-Flask-Bottle%2Fdp%2FB01ACATW7E">Hydro Flask</a>`))
	}))
	defer server.Close()

	links := NewDuckDuckGoLinks(DuckDuckGoConfig{
		HTTPClient: server.Client(),
		Endpoint:   server.URL,
	})

	link, ok := links.Lookup(context.Background(), "water bottle")
	require.True(t, ok)
	assert.Equal(t, "https://www.amazon.com/Hydro-Flask-Bottle/dp/B01ACATW7E", link)
}

func TestUnescapePercent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "https%3A%2F%2Fwww.amazon.com", want: "https://www.amazon.com"},
		{in: "Save 50% today", want: "Save 50% today"},
		{in: "a+b%2Bc", want: "a+b+c"},
		{in: "100%%2F", want: "100%/"},
		{in: "caf%C3%A9", want: "café"},
		{in: "trailing %", want: "trailing %"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, unescapePercent(tt.in), tt.in)
	}
}

func TestDuckDuckGoLinks_Failures(t *testing.T) {
	tests := []struct {
		handler http.HandlerFunc
		name    string
	}{
		{
			name: "no product link in page",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`<html>No results. https://www.amazon.com/s?k=tent</html>`))
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "https://www.amazon.com/Tent/dp/B01ACATW7E", http.StatusServiceUnavailable)
			},
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			links := NewDuckDuckGoLinks(DuckDuckGoConfig{HTTPClient: server.Client(), Endpoint: server.URL})
			link, ok := links.Lookup(context.Background(), "tent")
			assert.False(t, ok)
			assert.Empty(t, link)
		})
	}
}

func TestDuckDuckGoLinks_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte("https://www.amazon.com/Tent/dp/B01ACATW7E"))
	}))
	defer server.Close()

	links := NewDuckDuckGoLinks(DuckDuckGoConfig{
		HTTPClient: server.Client(),
		Endpoint:   server.URL,
		Timeout:    50 * time.Millisecond,
	})

	start := time.Now()
	_, ok := links.Lookup(context.Background(), "tent")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDuckDuckGoLinks_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	links := NewDuckDuckGoLinks(DuckDuckGoConfig{Endpoint: endpoint, Timeout: time.Second})
	_, ok := links.Lookup(context.Background(), "tent")
	assert.False(t, ok)
}
