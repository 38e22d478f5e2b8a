package recommend

import "context"

// LinkStrategy proposes a URL for a recommendation. The resolver tries
// strategies in order and keeps the first proposal.
type LinkStrategy func(ctx context.Context, name, original string) (string, bool)

// ImageStrategy proposes an image for a keyword.
type ImageStrategy func(ctx context.Context, keyword string) (string, bool)

// KeepProductPage keeps an original URL that already points at a product.
func KeepProductPage(c Catalog) LinkStrategy {
	return func(_ context.Context, _, original string) (string, bool) {
		return original, c.IsProductPage(original)
	}
}

// LookupProductPage asks a link service for a product page by name. Only
// answers that are themselves product pages are accepted.
func LookupProductPage(c Catalog, links LinkLookup) LinkStrategy {
	return func(ctx context.Context, name, _ string) (string, bool) {
		if name == "" {
			return "", false
		}
		found, ok := links.Lookup(ctx, name)
		if !ok || !c.IsProductPage(found) {
			return "", false
		}
		return found, true
	}
}

// KeepOnDomain keeps an original URL that at least belongs to the catalog.
func KeepOnDomain(c Catalog) LinkStrategy {
	return func(_ context.Context, _, original string) (string, bool) {
		return original, c.OnDomain(original)
	}
}

// SearchByName always succeeds with a catalog search, or the catalog root
// when there is no name.
func SearchByName(c Catalog) LinkStrategy {
	return func(_ context.Context, name, _ string) (string, bool) {
		return c.SearchURL(name), true
	}
}

// ImagePage searches one result page of an image service.
func ImagePage(images ImageLookup, page int) ImageStrategy {
	return func(ctx context.Context, keyword string) (string, bool) {
		if keyword == "" {
			return "", false
		}
		return images.Search(ctx, keyword, page)
	}
}
