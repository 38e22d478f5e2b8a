// Package recommend validates and repairs recommendation links and attaches
// de-duplicated illustrative images.
package recommend

import (
	"net/url"
	"regexp"
	"strings"
)

// Placeholder is the shared image used when no unique image can be found.
const Placeholder = "https://via.placeholder.com/120?text=No+Image"

var productPath = regexp.MustCompile(`^/(?:[^?#]*/)?(?:dp|gp/product)/[A-Za-z0-9]{10}(?:[/?#]|$)`)

// Catalog describes the store recommendations must link into.
type Catalog struct {
	Domain     string // Registrable domain, e.g. amazon.com
	Root       string // Generic landing page
	SearchBase string // Prefix completed with the escaped query
}

// Amazon is the default catalog.
var Amazon = Catalog{
	Domain:     "amazon.com",
	Root:       "https://www.amazon.com/",
	SearchBase: "https://www.amazon.com/s?k=",
}

// OnDomain reports whether raw is an http(s) URL on the catalog domain or
// one of its subdomains.
func (c Catalog) OnDomain(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == c.Domain || strings.HasSuffix(host, "."+c.Domain)
}

// IsProductPage reports whether raw points at a specific catalog item:
// /dp/<ID> or /gp/product/<ID> with a 10 character alphanumeric ID.
func (c Catalog) IsProductPage(raw string) bool {
	if !c.OnDomain(raw) {
		return false
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return productPath.MatchString(u.EscapedPath())
}

// SearchURL builds a catalog search for name, or the root for an empty name.
func (c Catalog) SearchURL(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.Root
	}
	return c.SearchBase + url.QueryEscape(name)
}
