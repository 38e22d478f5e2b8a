package orders

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Veraticus/orderlens/internal/model"
)

// DefaultCountryNoise lists country names stripped from addresses. Longer
// names come first so they win over their prefixes.
var DefaultCountryNoise = []string{
	"united states of america",
	"united states",
}

var (
	houseNumberPrefix = regexp.MustCompile(`^(.*?)\d{3,5}`)
	roomNoise         = regexp.MustCompile(`(?i)[a-z ]*house rm \d+[a-z]?`)
)

// AddressSimplifier reduces raw shipping addresses to a short destination.
// It is stateless and safe for concurrent use.
type AddressSimplifier struct {
	countries []*regexp.Regexp
}

// NewAddressSimplifier creates a simplifier that strips the given country
// names. A nil list uses DefaultCountryNoise.
func NewAddressSimplifier(countryNoise []string) *AddressSimplifier {
	if countryNoise == nil {
		countryNoise = DefaultCountryNoise
	}
	s := &AddressSimplifier{}
	for _, country := range countryNoise {
		country = strings.TrimSpace(country)
		if country == "" {
			continue
		}
		s.countries = append(s.countries, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(country)))
	}
	return s
}

// Simplify splits a raw address into an optional name prefix and a cleaned
// remainder. The name is whatever precedes the first run of 3-5 digits; the
// remainder is what follows that run with country and room noise removed.
func (s *AddressSimplifier) Simplify(raw string) model.NormalizedAddress {
	addr := norm.NFKC.String(raw)

	var name string
	if m := houseNumberPrefix.FindStringSubmatch(addr); m != nil {
		name = strings.Join(strings.Fields(m[1]), " ")
	}

	rest := houseNumberPrefix.ReplaceAllString(addr, "")
	for _, country := range s.countries {
		rest = country.ReplaceAllString(rest, "")
	}
	rest = roomNoise.ReplaceAllString(rest, "")

	return model.NormalizedAddress{
		Name:      name,
		Remainder: strings.Join(strings.Fields(rest), " "),
	}
}

// NameRegistry remembers which recipient names were already narrated during
// one run, so each name appears at most once in the output.
type NameRegistry struct {
	seen map[string]struct{}
}

// NewNameRegistry creates an empty registry.
func NewNameRegistry() *NameRegistry {
	return &NameRegistry{seen: make(map[string]struct{})}
}

// Render returns the address text for a narrative line. The name prefix is
// included only on the first call for that name.
func (r *NameRegistry) Render(addr model.NormalizedAddress) string {
	if addr.Name == "" {
		return addr.Remainder
	}
	if _, ok := r.seen[addr.Name]; ok {
		return addr.Remainder
	}
	r.seen[addr.Name] = struct{}{}
	return strings.TrimSpace(addr.Name + " " + addr.Remainder)
}
