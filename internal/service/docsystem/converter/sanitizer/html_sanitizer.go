package sanitizer

import (
	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer removes dangerous HTML elements and attributes to prevent XSS attacks.
// Applied to document content on every write and to AI-generated HTML before it is returned.
//
// Thread-safe for concurrent use.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer creates a sanitizer with safe HTML policies.
// Uses a UGC (User Generated Content) policy that allows common formatting
// while stripping dangerous elements like scripts, event handlers, and javascript: URLs.
func NewHTMLSanitizer() *HTMLSanitizer {
	// Start with UGC policy (balanced security/functionality)
	policy := bluemonday.UGCPolicy()

	// Images pasted into the editor arrive as data URIs
	policy.AllowDataURIImages()

	// Inline highlight anchors written by the editor
	policy.AllowElements("mark")
	policy.AllowAttrs("data-highlight-id").OnElements("mark", "span")

	return &HTMLSanitizer{policy: policy}
}

// NewStrictHTMLSanitizer creates a sanitizer with strict policies that strip all HTML.
// Use this for maximum security when HTML formatting is not needed.
func NewStrictHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize removes dangerous HTML while preserving safe content.
func (s *HTMLSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
