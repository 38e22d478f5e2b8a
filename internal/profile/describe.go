package profile

import (
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// Describe renders the schema as prompt text: one line per field with its
// cardinality and quoted vocabulary.
func Describe(schema Schema) string {
	var b strings.Builder
	for _, f := range schema.Fields {
		quoted := make([]string, len(f.Vocabulary))
		for i, v := range f.Vocabulary {
			quoted[i] = fmt.Sprintf("%q", v)
		}
		switch f.Cardinality {
		case Multi:
			fmt.Fprintf(&b, "- %s (%s; list of zero or more of): [%s]\n", f.Name, f.Description, strings.Join(quoted, ", "))
		default:
			fmt.Fprintf(&b, "- %s (%s; exactly one of, use %q when unsure): [%s]\n", f.Name, f.Description, f.Fallback(), strings.Join(quoted, ", "))
		}
	}
	return b.String()
}

// ResponseSchema describes the complete expected reply as a JSON schema,
// suitable for structured-output requests.
func ResponseSchema(schema Schema) *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(schema.Fields))
	required := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		enum := make([]any, len(f.Vocabulary))
		for i, v := range f.Vocabulary {
			enum[i] = v
		}
		switch f.Cardinality {
		case Multi:
			props[f.Name] = &jsonschema.Schema{
				Type:        "array",
				Description: f.Description,
				Items:       &jsonschema.Schema{Type: "string", Enum: enum},
			}
		default:
			props[f.Name] = &jsonschema.Schema{
				Type:        "string",
				Description: f.Description,
				Enum:        enum,
			}
		}
		required = append(required, f.Name)
	}

	recommendation := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name":   {Type: "string"},
			"reason": {Type: "string"},
			"url":    {Type: "string", Description: "https://www.amazon.com/dp/<ASIN> or https://www.amazon.com/s?k=<query>"},
		},
		Required:             []string{"name", "reason", "url"},
		AdditionalProperties: falseSchema(),
	}

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"profile": {
				Type:                 "object",
				Properties:           props,
				Required:             required,
				AdditionalProperties: falseSchema(),
			},
			"recommendations": {
				Type:  "array",
				Items: recommendation,
			},
		},
		Required:             []string{"profile", "recommendations"},
		AdditionalProperties: falseSchema(),
	}
}

func falseSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}
