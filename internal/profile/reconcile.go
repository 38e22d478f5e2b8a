package profile

import (
	"strings"

	"github.com/Veraticus/orderlens/internal/model"
)

// Reconcile builds a profile in which every schema field is present and
// holds only vocabulary values. parsed is the decoded reply; anything that
// is not an object with a "profile" object is treated as an empty profile.
// Out-of-vocabulary values are dropped or replaced silently.
func Reconcile(schema Schema, parsed any) model.Profile {
	var raw map[string]any
	if root, ok := parsed.(map[string]any); ok {
		switch p := root["profile"].(type) {
		case map[string]any:
			raw = p
		case model.Profile:
			raw = p
		}
	}

	out := make(model.Profile, len(schema.Fields))
	for _, field := range schema.Fields {
		value := raw[field.Name]
		switch field.Cardinality {
		case Multi:
			out[field.Name] = reconcileMulti(field, value)
		default:
			out[field.Name] = reconcileSingle(field, value)
		}
	}
	return out
}

func reconcileSingle(field Field, value any) string {
	if s, ok := value.(string); ok && field.Allows(s) {
		return s
	}
	return field.Fallback()
}

func reconcileMulti(field Field, value any) []string {
	out := []string{}
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && field.Allows(s) {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range v {
			if field.Allows(s) {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); field.Allows(s) {
				out = append(out, s)
			}
		}
	}
	return out
}
