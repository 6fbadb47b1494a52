// Package sanitize strips markup from user-supplied free text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/carepoint/scheduling-api/internal/core/ports"
)

var _ ports.TextSanitizer = (*Text)(nil)

// Text removes every HTML element from its input. The policy is safe for
// concurrent use once built.
type Text struct {
	policy *bluemonday.Policy
}

func NewText() *Text {
	return &Text{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns s without tags, with entities decoded and surrounding
// whitespace trimmed. bluemonday escapes &, < and quotes on output; decoding
// keeps "Smith & Jones" readable in JSON responses.
func (t *Text) Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(t.policy.Sanitize(s)))
}
