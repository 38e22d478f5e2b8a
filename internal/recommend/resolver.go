package recommend

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Veraticus/orderlens/internal/model"
)

// Resolver turns raw recommendation candidates into resolved recommendations.
type Resolver struct {
	logger      *slog.Logger
	catalog     Catalog
	links       []LinkStrategy
	unnamed     []LinkStrategy
	images      []ImageStrategy
	placeholder string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithCatalog replaces the default Amazon catalog.
func WithCatalog(c Catalog) Option {
	return func(r *Resolver) { r.catalog = c }
}

// WithPlaceholder replaces the shared placeholder image.
func WithPlaceholder(img string) Option {
	return func(r *Resolver) { r.placeholder = img }
}

// NewResolver creates a resolver. Nil lookups are treated as services that
// never find anything.
func NewResolver(links LinkLookup, images ImageLookup, opts ...Option) *Resolver {
	if links == nil {
		links = noLinks{}
	}
	if images == nil {
		images = noImages{}
	}

	r := &Resolver{
		logger:      slog.Default(),
		catalog:     Amazon,
		placeholder: Placeholder,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.links = []LinkStrategy{
		KeepProductPage(r.catalog),
		LookupProductPage(r.catalog, links),
		KeepOnDomain(r.catalog),
		SearchByName(r.catalog),
	}
	r.unnamed = []LinkStrategy{
		KeepProductPage(r.catalog),
		KeepOnDomain(r.catalog),
		SearchByName(r.catalog),
	}
	r.images = []ImageStrategy{
		ImagePage(images, 1),
		ImagePage(images, 2),
	}
	return r
}

// Resolve validates each candidate in order. Non-object entries and entries
// with neither a name nor a URL are skipped. Images are unique within one
// call unless every source is exhausted, in which case the placeholder is
// shared. Lookup failures only ever degrade to the next fallback.
func (r *Resolver) Resolve(ctx context.Context, candidates any) []model.Recommendation {
	list, ok := candidates.([]any)
	if !ok {
		if candidates != nil {
			r.logger.Debug("recommendations are not a list", "type", typeName(candidates))
		}
		return []model.Recommendation{}
	}

	used := make(map[string]struct{})
	out := make([]model.Recommendation, 0, len(list))

	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			r.logger.Debug("skipping non-object recommendation", "index", i)
			continue
		}

		name := stringField(entry, "name")
		original := stringField(entry, "url")
		if name == "" && original == "" {
			r.logger.Debug("skipping recommendation without name or url", "index", i)
			continue
		}

		rec := model.Recommendation{
			Name:   name,
			Reason: stringField(entry, "reason"),
			Img:    r.placeholder,
		}

		if name == "" {
			rec.URL = firstLink(ctx, r.unnamed, name, original)
		} else {
			rec.URL = firstLink(ctx, r.links, name, original)
			rec.Img = r.resolveImage(ctx, name, used)
		}

		r.logger.Debug("resolved recommendation",
			"name", rec.Name,
			"url", rec.URL,
			"url_changed", rec.URL != original,
			"placeholder_image", rec.Img == r.placeholder)

		out = append(out, rec)
	}

	return out
}

// resolveImage moves to the next image strategy only when the current one
// answered with an image already used in this call. A miss ends the chain.
func (r *Resolver) resolveImage(ctx context.Context, keyword string, used map[string]struct{}) string {
	for _, strategy := range r.images {
		img, ok := strategy(ctx, keyword)
		if !ok || img == "" || img == r.placeholder {
			return r.placeholder
		}
		if _, taken := used[img]; taken {
			continue
		}
		used[img] = struct{}{}
		return img
	}
	return r.placeholder
}

func firstLink(ctx context.Context, strategies []LinkStrategy, name, original string) string {
	for _, strategy := range strategies {
		if link, ok := strategy(ctx, name, original); ok && link != "" {
			return link
		}
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func typeName(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	default:
		return "unknown"
	}
}
