package model

// Profile maps profile field names to their reconciled values.
// Single-select fields hold a string, multi-select fields a []string.
type Profile map[string]any

// String returns the value of a single-select field.
func (p Profile) String(field string) string {
	s, _ := p[field].(string)
	return s
}

// Strings returns the values of a multi-select field. Values decoded from
// JSON arrive as []any and are converted.
func (p Profile) Strings(field string) []string {
	switch v := p[field].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
