// Package reply recovers structured data from free-form inference replies.
package reply

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/Veraticus/orderlens/internal/common"
)

// NonJSONReason is the error marker attached to unrecoverable replies.
const NonJSONReason = "non-JSON reply"

// replyKeys are the top-level keys a repaired object must contain.
var replyKeys = []string{"profile", "recommendations"}

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*")
	jsonFenceBody = regexp.MustCompile("(?is)```json\\s*(.*?)```")
)

// Error is returned when a reply cannot be turned into structured data.
// It carries the original, untouched reply.
type Error struct {
	Raw    string
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func (e *Error) Unwrap() error {
	return common.ErrNonJSONReply
}

// Options tunes the parser.
type Options struct {
	// Repair enables a last attempt that repairs malformed objects, such as
	// replies truncated mid-object or with trailing commas. Only repairs
	// holding a "profile" or "recommendations" key are accepted.
	Repair bool
}

// Parser recovers JSON values from replies.
type Parser struct {
	opts Options
}

// NewParser creates a parser.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Parse uses a parser with repair enabled.
func Parse(raw string) (any, error) {
	return NewParser(Options{Repair: true}).Parse(raw)
}

// Parse decodes raw, trying in order: the fence-stripped text, the body of
// a ```json block anywhere in raw, and optionally a repaired object. On
// failure it returns *Error with the original text.
func (p *Parser) Parse(raw string) (any, error) {
	stripped := StripFence(raw)
	if v, err := decode(stripped); err == nil {
		return v, nil
	}

	block, hasBlock := JSONBlock(raw)
	if hasBlock {
		if v, err := decode(block); err == nil {
			return v, nil
		}
	}

	if p.opts.Repair {
		candidates := []string{stripped}
		if hasBlock {
			candidates = append(candidates, block)
		}
		for _, candidate := range candidates {
			if v, ok := repairObject(candidate); ok {
				return v, nil
			}
		}
	}

	return nil, &Error{Raw: raw, Reason: NonJSONReason}
}

// StripFence removes a leading ``` fence (with optional language tag) and a
// trailing ``` from a reply.
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = leadingFence.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// JSONBlock returns the contents of the first ```json fenced block.
func JSONBlock(raw string) (string, bool) {
	m := jsonFenceBody.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func decode(s string) (any, error) {
	if s == "" {
		return nil, fmt.Errorf("empty input")
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// repairObject only applies to text that starts like an object so prose is
// never coerced into a JSON string. The repaired object must carry one of
// the reply's top-level keys; anything else is a fragment, not a reply.
func repairObject(s string) (map[string]any, bool) {
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	fixed, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(fixed), &obj); err != nil {
		return nil, false
	}
	if !hasReplyKey(obj) {
		return nil, false
	}
	return obj, true
}

func hasReplyKey(obj map[string]any) bool {
	for _, key := range replyKeys {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}
