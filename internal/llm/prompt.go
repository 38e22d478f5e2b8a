package llm

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Veraticus/orderlens/internal/profile"
)

// DefaultMaxLines bounds the narrative sent in one request.
const DefaultMaxLines = 500

//go:embed templates/system_prompt.tmpl
var systemPromptText string

var systemPromptTemplate = template.Must(template.New("system_prompt").Parse(systemPromptText))

type promptData struct {
	Store              string
	Fields             string
	ProductURL         string
	SearchURL          string
	MinRecommendations int
	MaxRecommendations int
}

// SystemPrompt renders the instruction describing the expected reply for schema.
func SystemPrompt(schema profile.Schema) (string, error) {
	data := promptData{
		Store:              "Amazon",
		Fields:             profile.Describe(schema),
		ProductURL:         "https://www.amazon.com/dp/<10-character ASIN>",
		SearchURL:          "https://www.amazon.com/s?k=<url-encoded query>",
		MinRecommendations: 3,
		MaxRecommendations: 5,
	}

	var b strings.Builder
	if err := systemPromptTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render system prompt: %w", err)
	}
	return b.String(), nil
}

// Truncate keeps the first limit lines of a newline-joined narrative. A limit
// of zero or less means DefaultMaxLines.
func Truncate(narrative string, limit int) string {
	if limit <= 0 {
		limit = DefaultMaxLines
	}
	if narrative == "" {
		return ""
	}
	lines := strings.SplitN(narrative, "\n", limit+1)
	if len(lines) <= limit {
		return narrative
	}
	return strings.Join(lines[:limit], "\n")
}
