package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultUnsplashEndpoint is the photo search endpoint used for image lookups.
const DefaultUnsplashEndpoint = "https://api.unsplash.com/search/photos"

// UnsplashConfig configures UnsplashImages.
type UnsplashConfig struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	AccessKey  string
	Endpoint   string
	Timeout    time.Duration
	RateLimit  float64 // Requests per second, 0 for unlimited
}

// UnsplashImages looks up square thumbnails, one result per page.
type UnsplashImages struct {
	fetcher   *httpFetcher
	logger    *slog.Logger
	accessKey string
	endpoint  string
}

type unsplashResponse struct {
	Results []struct {
		URLs struct {
			Thumb string `json:"thumb"`
		} `json:"urls"`
	} `json:"results"`
}

// NewUnsplashImages creates an image lookup. Without an access key every
// search finds nothing.
func NewUnsplashImages(cfg UnsplashConfig) *UnsplashImages {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultUnsplashEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 4 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &UnsplashImages{
		fetcher:   newHTTPFetcher(cfg.HTTPClient, cfg.Timeout, cfg.RateLimit),
		logger:    cfg.Logger,
		accessKey: cfg.AccessKey,
		endpoint:  cfg.Endpoint,
	}
}

// Search returns the thumbnail of the single result on the given page.
func (u *UnsplashImages) Search(ctx context.Context, keyword string, page int) (string, bool) {
	if u.accessKey == "" {
		return "", false
	}
	if page < 1 {
		page = 1
	}

	q := url.Values{
		"query":       {keyword},
		"per_page":    {"1"},
		"page":        {strconv.Itoa(page)},
		"orientation": {"squarish"},
	}
	header := http.Header{
		"Authorization":  {"Client-ID " + u.accessKey},
		"Accept-Version": {"v1"},
	}

	body, err := u.fetcher.get(ctx, u.endpoint+"?"+q.Encode(), header)
	if err != nil {
		u.logger.Debug("image lookup failed", "keyword", keyword, "page", page, "error", err)
		return "", false
	}

	thumb, err := parseUnsplash(body)
	if err != nil {
		u.logger.Debug("image lookup returned bad body", "keyword", keyword, "page", page, "error", err)
		return "", false
	}
	return thumb, thumb != ""
}

func parseUnsplash(body []byte) (string, error) {
	var resp unsplashResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return resp.Results[0].URLs.Thumb, nil
}
