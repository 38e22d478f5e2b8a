package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/orderlens/internal/common"
	"github.com/Veraticus/orderlens/internal/llm"
	"github.com/Veraticus/orderlens/internal/model"
	"github.com/Veraticus/orderlens/internal/recommend"
	"github.com/Veraticus/orderlens/internal/reply"
	"github.com/Veraticus/orderlens/internal/service"
)

const exampleCSV = "Order Date,Product Name,Shipping Address,Unit Price\n" +
	"2024-01-01,Widget,123 Main St,9.99\n" +
	"2024-01-10,Widget2,123 Main St,19.99\n" +
	"2024-03-01,Widget3,123 Main St,5.00\n"

type fakeClient struct {
	err      error
	reply    string
	requests []llm.Request
	mu       sync.Mutex
}

func (f *fakeClient) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type memoryStore struct {
	err   error
	saved []*model.ProfileInferenceResult
	mu    sync.Mutex
}

func (s *memoryStore) SaveResult(_ context.Context, _ string, result *model.ProfileInferenceResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, result)
	return "id", nil
}

func (s *memoryStore) GetResult(context.Context, string) (*service.StoredResult, error) {
	return nil, common.ErrNotFound
}

func (s *memoryStore) ListResults(context.Context, int) ([]service.StoredResult, error) {
	return nil, nil
}

func TestRun_EndToEnd(t *testing.T) {
	client := &fakeClient{reply: "```json\n" + `{
		"profile": {
			"age": "25-34",
			"gender": "Robot",
			"hobbies": "Reading, NotARealHobby, Gaming",
			"lifestyle": ["Active", "Sedentary", "Active"]
		},
		"recommendations": [
			{"name": "Camping Tent", "reason": "Outdoor gear", "url": "https://tents.example.com/tent"},
			{"name": "Kindle", "reason": "Reads", "url": "https://www.amazon.com/dp/B09SWRYPB2"},
			"garbage"
		]
	}` + "\n```"}

	images := recommend.ImageLookupFunc(func(_ context.Context, keyword string, page int) (string, bool) {
		if page == 1 {
			return "https://img/" + strings.ReplaceAll(keyword, " ", "-"), true
		}
		return "", false
	})
	p := New(client, recommend.NewResolver(nil, images))

	result, err := p.Run(context.Background(), "orders.csv", strings.NewReader(exampleCSV))
	require.NoError(t, err)
	require.False(t, result.Failed())

	require.Equal(t, 1, client.calls())
	req := client.requests[0]
	assert.Equal(t, "2024-01-01: Widget - $9.99 - shipped to Main St\n2024-03-01: Widget3 - $5.00 - shipped to Main St", req.User)
	assert.Contains(t, req.System, `"recommendations"`)
	assert.Nil(t, req.Schema)

	assert.Equal(t, "25-34", result.Profile["age"])
	assert.Equal(t, "Unknown", result.Profile["gender"])
	assert.Equal(t, "Unknown", result.Profile["profession"])
	assert.Equal(t, []string{"Reading", "Gaming"}, result.Profile["hobbies"])
	assert.Equal(t, []string{"Active", "Active"}, result.Profile["lifestyle"])
	assert.Equal(t, []string{}, result.Profile["personality"])

	want := []model.Recommendation{
		{Name: "Camping Tent", Reason: "Outdoor gear", URL: "https://www.amazon.com/s?k=Camping+Tent", Img: "https://img/Camping-Tent"},
		{Name: "Kindle", Reason: "Reads", URL: "https://www.amazon.com/dp/B09SWRYPB2", Img: "https://img/Kindle"},
	}
	if diff := cmp.Diff(want, result.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_NonJSONReply(t *testing.T) {
	client := &fakeClient{reply: "not json at all"}
	p := New(client, nil)

	result, err := p.Run(context.Background(), "orders.csv", strings.NewReader(exampleCSV))
	require.NoError(t, err)

	assert.True(t, result.Failed())
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, "not json at all", result.RawResponse)
	assert.Empty(t, result.Profile)
	assert.Empty(t, result.Recommendations)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"profile": {}, "recommendations": [], "error": "non-JSON reply", "raw_response": "not json at all"}`, string(data))
}

func TestRun_InferenceFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("connection reset")}
	store := &memoryStore{}
	p := New(client, nil, WithStore(store))

	result, err := p.Run(context.Background(), "orders.csv", strings.NewReader(exampleCSV))
	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.Contains(t, result.Error, "connection reset")
	assert.Empty(t, result.RawResponse)
	assert.NotNil(t, result.Profile)
	assert.NotNil(t, result.Recommendations)

	require.Len(t, store.saved, 1)
	assert.Same(t, result, store.saved[0])
}

func TestRun_InputErrorsStopBeforeInference(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		input   string
	}{
		{
			name:    "missing column",
			input:   "Order Date,Product Name,Unit Price\n2024-01-01,Widget,9.99\n",
			wantErr: common.ErrSchema,
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: common.ErrSchema,
		},
		{
			name:    "no usable rows",
			input:   "Order Date,Product Name,Shipping Address,Unit Price\nnot a date,Widget,1 Main St,1\n,Gadget,1 Main St,2\n",
			wantErr: common.ErrEmptyDataset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{reply: "{}"}
			p := New(client, nil)

			result, err := p.Run(context.Background(), "bad.csv", strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)
			assert.Zero(t, client.calls())
		})
	}

	var schemaErr *common.SchemaError
	_, err := New(&fakeClient{}, nil).Run(context.Background(), "x.csv",
		strings.NewReader("Order Date,Product Name,Unit Price\n"))
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "Shipping Address", schemaErr.Column)
}

func TestRun_FilteredExportMessage(t *testing.T) {
	client := &fakeClient{reply: "{}"}
	p := New(client, nil)

	_, err := p.Run(context.Background(), "filtered.csv", strings.NewReader(
		"Order Date,Product Name,Shipping Address,Unit Price\nnot a date,Widget,1 Main St,1\n,Gadget,1 Main St,2\n"))
	require.ErrorIs(t, err, common.ErrEmptyDataset)
	assert.Contains(t, err.Error(), "all 2 rows were filtered out")
	assert.Contains(t, err.Error(), "1 missing date or product name")
	assert.Contains(t, err.Error(), "1 with unparseable dates")

	_, err = p.Run(context.Background(), "header.csv", strings.NewReader("Order Date,Product Name,Shipping Address,Unit Price\n"))
	require.ErrorIs(t, err, common.ErrEmptyDataset)
	assert.Contains(t, err.Error(), "no data rows")
	assert.Zero(t, client.calls())
}

func TestRun_Options(t *testing.T) {
	var b strings.Builder
	b.WriteString("Order Date,Product Name,Shipping Address,Unit Price\n")
	for i := 1; i <= 9; i++ {
		// Each row ships to a different street, so nothing is deduplicated.
		fmt.Fprintf(&b, "2024-01-%02d,Item %d,%d00 Road %c,1\n", i, i, i, 'A'+rune(i))
	}

	client := &fakeClient{reply: `{"profile": {}, "recommendations": []}`}
	p := New(client, nil, WithMaxLines(3), WithStructuredOutput(true))

	_, err := p.Run(context.Background(), "many.csv", strings.NewReader(b.String()))
	require.NoError(t, err)

	req := client.requests[0]
	assert.Len(t, strings.Split(req.User, "\n"), 3)
	assert.True(t, strings.HasPrefix(req.User, "2024-01-01: Item"))
	require.NotNil(t, req.Schema)
	assert.Equal(t, "object", req.Schema.Type)
}

func TestRun_StoreFailureIsNotFatal(t *testing.T) {
	store := &memoryStore{err: errors.New("database is locked")}
	p := New(&fakeClient{reply: `{"profile": {"age": "65+"}}`}, nil, WithStore(store))

	result, err := p.Run(context.Background(), "orders.csv", strings.NewReader(exampleCSV))
	require.NoError(t, err)
	assert.Equal(t, "65+", result.Profile["age"])
	assert.Equal(t, []model.Recommendation{}, result.Recommendations)
}

func TestRun_ConcurrentRunsAreIndependent(t *testing.T) {
	client := &fakeClient{reply: `{"profile": {}, "recommendations": [{"name": "Tent"}]}`}
	images := recommend.ImageLookupFunc(func(context.Context, string, int) (string, bool) {
		return "https://img/tent", true
	})
	p := New(client, recommend.NewResolver(nil, images))

	const runs = 8
	results := make([]*model.ProfileInferenceResult, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := p.Run(context.Background(), "orders.csv", strings.NewReader(exampleCSV))
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.NotNil(t, r)
		require.Len(t, r.Recommendations, 1)
		// Image dedup state is per run, so every run gets the real image.
		assert.Equal(t, "https://img/tent", r.Recommendations[0].Img)
	}
	for _, req := range client.requests {
		assert.Equal(t, client.requests[0].User, req.User)
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(exampleCSV), 0o600))

	p := New(&fakeClient{reply: `{"profile": {}, "recommendations": []}`}, nil)
	result, err := p.RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, result.Failed())

	_, err = p.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInterpret(t *testing.T) {
	p := New(&fakeClient{}, nil)

	t.Run("non-object JSON yields a default profile", func(t *testing.T) {
		result := p.Interpret(context.Background(), `["just", "a", "list"]`)
		assert.False(t, result.Failed())
		assert.Equal(t, "Unknown", result.Profile["age"])
		assert.Empty(t, result.Recommendations)
	})

	t.Run("truncated object is repaired", func(t *testing.T) {
		result := p.Interpret(context.Background(), `{"profile": {"age": "18-24", "hobbies": ["Gaming"`)
		assert.False(t, result.Failed())
		assert.Equal(t, "18-24", result.Profile["age"])
		assert.Equal(t, []string{"Gaming"}, result.Profile["hobbies"])
	})

	t.Run("object fragments fall back to the raw reply", func(t *testing.T) {
		for _, raw := range []string{"{", "{not json at all"} {
			result := p.Interpret(context.Background(), raw)
			assert.True(t, result.Failed(), raw)
			assert.Equal(t, reply.NonJSONReason, result.Error)
			assert.Equal(t, raw, result.RawResponse)
			assert.Empty(t, result.Profile)
			assert.Empty(t, result.Recommendations)
		}
	})

	t.Run("prose wrapping a json block", func(t *testing.T) {
		result := p.Interpret(context.Background(), "Here you go:\n```json\n{\"profile\": {\"gender\": \"Female\"}}\n```\nEnjoy!")
		assert.False(t, result.Failed())
		assert.Equal(t, "Female", result.Profile["gender"])
	})
}

func TestPrompt(t *testing.T) {
	p := New(&fakeClient{}, nil)

	req, err := p.Prompt(strings.NewReader(exampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, len(strings.Split(req.User, "\n")))
	assert.NotEmpty(t, req.System)

	_, err = p.Prompt(strings.NewReader("Product Name\nx\n"))
	assert.ErrorIs(t, err, common.ErrSchema)
}
