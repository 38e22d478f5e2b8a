package recommend

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

// DefaultDuckDuckGoEndpoint is the HTML search endpoint used for link lookups.
const DefaultDuckDuckGoEndpoint = "https://duckduckgo.com/html/"

var (
	amazonProductLink = regexp.MustCompile(`https://www\.amazon\.com/[^"\s<>]+/dp/[A-Z0-9]{10}`)
	percentEscape     = regexp.MustCompile(`%[0-9A-Fa-f]{2}`)
)

// DuckDuckGoConfig configures DuckDuckGoLinks.
type DuckDuckGoConfig struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	Endpoint   string
	Site       string // Restricts the search, e.g. amazon.com/dp
	Timeout    time.Duration
	RateLimit  float64 // Requests per second, 0 for unlimited
}

// DuckDuckGoLinks finds product pages by scraping a web search results page.
type DuckDuckGoLinks struct {
	fetcher  *httpFetcher
	logger   *slog.Logger
	endpoint string
	site     string
}

// NewDuckDuckGoLinks creates a link lookup.
func NewDuckDuckGoLinks(cfg DuckDuckGoConfig) *DuckDuckGoLinks {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultDuckDuckGoEndpoint
	}
	if cfg.Site == "" {
		cfg.Site = "amazon.com/dp"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &DuckDuckGoLinks{
		fetcher:  newHTTPFetcher(cfg.HTTPClient, cfg.Timeout, cfg.RateLimit),
		logger:   cfg.Logger,
		endpoint: cfg.Endpoint,
		site:     cfg.Site,
	}
}

// Lookup returns the first product link in the search results for keyword.
func (d *DuckDuckGoLinks) Lookup(ctx context.Context, keyword string) (string, bool) {
	q := url.Values{"q": {keyword + " site:" + d.site}}
	body, err := d.fetcher.get(ctx, d.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		d.logger.Debug("link lookup failed", "keyword", keyword, "error", err)
		return "", false
	}

	link := amazonProductLink.FindString(unescapePercent(string(body)))
	if link == "" {
		d.logger.Debug("link lookup found nothing", "keyword", keyword)
		return "", false
	}
	return link, true
}

// unescapePercent decodes every well-formed %XX sequence and leaves stray
// percent signs and plus signs alone, so one bad escape in a result snippet
// does not hide the links around it.
func unescapePercent(s string) string {
	return percentEscape.ReplaceAllStringFunc(s, func(m string) string {
		b, err := strconv.ParseUint(m[1:], 16, 8)
		if err != nil {
			return m
		}
		return string([]byte{byte(b)})
	})
}
