package recommend

import "context"

// LinkLookup finds a product page for a keyword.
type LinkLookup interface {
	Lookup(ctx context.Context, keyword string) (string, bool)
}

// ImageLookup finds an image for a keyword. Pages start at 1.
type ImageLookup interface {
	Search(ctx context.Context, keyword string, page int) (string, bool)
}

// LinkLookupFunc adapts a function to LinkLookup.
type LinkLookupFunc func(ctx context.Context, keyword string) (string, bool)

// Lookup calls f.
func (f LinkLookupFunc) Lookup(ctx context.Context, keyword string) (string, bool) {
	return f(ctx, keyword)
}

// ImageLookupFunc adapts a function to ImageLookup.
type ImageLookupFunc func(ctx context.Context, keyword string, page int) (string, bool)

// Search calls f.
func (f ImageLookupFunc) Search(ctx context.Context, keyword string, page int) (string, bool) {
	return f(ctx, keyword, page)
}

type noLinks struct{}

func (noLinks) Lookup(context.Context, string) (string, bool) { return "", false }

type noImages struct{}

func (noImages) Search(context.Context, string, int) (string, bool) { return "", false }
