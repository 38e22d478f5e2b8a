// Package pipeline runs one order-history export through normalization,
// inference, and reply reconciliation.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/orderlens/internal/common"
	"github.com/Veraticus/orderlens/internal/llm"
	"github.com/Veraticus/orderlens/internal/model"
	"github.com/Veraticus/orderlens/internal/orders"
	"github.com/Veraticus/orderlens/internal/profile"
	"github.com/Veraticus/orderlens/internal/recommend"
	"github.com/Veraticus/orderlens/internal/reply"
	"github.com/Veraticus/orderlens/internal/service"
)

// Pipeline composes the normalizer, the inference client, the reply parser,
// the schema reconciler and the recommendation resolver. A Pipeline holds no
// per-run state, so independent runs may execute concurrently.
type Pipeline struct {
	client     llm.Client
	resolver   *recommend.Resolver
	normalizer *orders.Normalizer
	parser     *reply.Parser
	store      service.ResultStore
	logger     *slog.Logger
	schema     profile.Schema
	maxLines   int
	structured bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithSchema replaces the default profile schema.
func WithSchema(schema profile.Schema) Option {
	return func(p *Pipeline) { p.schema = schema }
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *orders.Normalizer) Option {
	return func(p *Pipeline) { p.normalizer = n }
}

// WithMaxLines bounds the narrative sent to the inference service.
func WithMaxLines(n int) Option {
	return func(p *Pipeline) { p.maxLines = n }
}

// WithParser replaces the default reply parser.
func WithParser(parser *reply.Parser) Option {
	return func(p *Pipeline) { p.parser = parser }
}

// WithStore records every finished result in store.
func WithStore(store service.ResultStore) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithStructuredOutput attaches the reply JSON schema to inference requests.
func WithStructuredOutput(enabled bool) Option {
	return func(p *Pipeline) { p.structured = enabled }
}

// New creates a pipeline. A nil resolver resolves links and images without
// any lookup service.
func New(client llm.Client, resolver *recommend.Resolver, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:   client,
		resolver: resolver,
		logger:   slog.Default(),
		schema:   profile.DefaultSchema(),
		maxLines: llm.DefaultMaxLines,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.resolver == nil {
		p.resolver = recommend.NewResolver(nil, nil, recommend.WithLogger(p.logger))
	}
	if p.normalizer == nil {
		p.normalizer = orders.NewNormalizer(orders.DefaultDedupWindow, nil)
	}
	if p.parser == nil {
		p.parser = reply.NewParser(reply.Options{Repair: true})
	}
	return p
}

// Run processes one export. Input errors are returned; inference and reply
// failures are reported inside the result.
func (p *Pipeline) Run(ctx context.Context, source string, r io.Reader) (*model.ProfileInferenceResult, error) {
	logger := p.logger.With("source", source)

	records, stats, err := orders.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read orders from %s: %w", source, err)
	}
	logger.Info("read order export",
		"rows", stats.Rows,
		"kept", stats.Kept,
		"missing_fields", stats.MissingFields,
		"bad_dates", stats.BadDates,
		"defaulted_prices", stats.DefaultedPrice)

	if len(records) == 0 {
		if stats.Rows == 0 {
			return nil, fmt.Errorf("%w in %s: the export has no data rows", common.ErrEmptyDataset, source)
		}
		return nil, fmt.Errorf("%w in %s: all %d rows were filtered out (%d missing date or product name, %d with unparseable dates)",
			common.ErrEmptyDataset, source, stats.Rows, stats.MissingFields, stats.BadDates)
	}

	narrative := p.normalizer.Narrate(records)
	user := llm.Truncate(narrative, p.maxLines)

	req, err := p.request(user)
	if err != nil {
		return nil, err
	}

	var result *model.ProfileInferenceResult
	raw, err := p.client.Complete(ctx, req)
	if err != nil {
		logger.Error("inference call failed", "error", err)
		result = model.NewErrorResult(fmt.Sprintf("inference failed: %v", err), "")
	} else {
		result = p.Interpret(ctx, raw)
	}

	p.save(ctx, logger, source, result)
	return result, nil
}

// RunFile opens path and runs it.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*model.ProfileInferenceResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return p.Run(ctx, path, f)
}

// Interpret turns a raw reply into a result. It never fails: an unparseable
// reply yields a result carrying the error and the raw text.
func (p *Pipeline) Interpret(ctx context.Context, raw string) *model.ProfileInferenceResult {
	parsed, err := p.parser.Parse(raw)
	if err != nil {
		p.logger.Warn("reply is not JSON", "error", err, "reply_bytes", len(raw))
		return model.NewErrorResult(reply.NonJSONReason, raw)
	}

	var candidates any
	if root, ok := parsed.(map[string]any); ok {
		candidates = root["recommendations"]
	}

	return &model.ProfileInferenceResult{
		Profile:         profile.Reconcile(p.schema, parsed),
		Recommendations: p.resolver.Resolve(ctx, candidates),
	}
}

// Prompt returns the system prompt and user text Run would send for r.
func (p *Pipeline) Prompt(r io.Reader) (llm.Request, error) {
	records, _, err := orders.ReadCSV(r)
	if err != nil {
		return llm.Request{}, err
	}
	return p.request(llm.Truncate(p.normalizer.Narrate(records), p.maxLines))
}

func (p *Pipeline) request(user string) (llm.Request, error) {
	system, err := llm.SystemPrompt(p.schema)
	if err != nil {
		return llm.Request{}, err
	}

	req := llm.Request{System: system, User: user}
	if p.structured {
		req.Schema = profile.ResponseSchema(p.schema)
	}
	return req, nil
}

func (p *Pipeline) save(ctx context.Context, logger *slog.Logger, source string, result *model.ProfileInferenceResult) {
	if p.store == nil {
		return
	}
	id, err := p.store.SaveResult(ctx, source, result)
	if err != nil {
		logger.Warn("failed to save result", "error", err)
		return
	}
	logger.Debug("saved result", "id", id)
}
