package converter

import (
	"fmt"
	"html"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"storyloom/internal/service/docsystem/converter/sanitizer"
)

// HTMLConverter moves document content between the editor's HTML and the
// plain markdown the completion service is prompted with.
//
// Thread-safe for concurrent use.
type HTMLConverter struct {
	sanitizer *sanitizer.HTMLSanitizer
	strict    *sanitizer.HTMLSanitizer
	converter *md.Converter
}

// NewHTMLConverter creates a new converter.
func NewHTMLConverter() *HTMLConverter {
	return &HTMLConverter{
		sanitizer: sanitizer.NewHTMLSanitizer(),
		strict:    sanitizer.NewStrictHTMLSanitizer(),
		converter: md.NewConverter("", true, nil),
	}
}

// Sanitize cleans editor HTML before it is stored
func (c *HTMLConverter) Sanitize(content string) string {
	return c.sanitizer.Sanitize(content)
}

// StripTags removes all markup, leaving escaped text. Used for titles.
func (c *HTMLConverter) StripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.strict.Sanitize(s)))
}

// ToPromptText converts editor HTML to markdown in two stages:
// 1. Sanitize: Remove <script>, event handlers, javascript: URLs, etc.
// 2. Convert: Transform HTML elements to markdown syntax
//
// Plain text input passes through unchanged.
func (c *HTMLConverter) ToPromptText(content string) (string, error) {
	if !strings.Contains(content, "<") {
		return strings.TrimSpace(content), nil
	}

	markdown, err := c.converter.ConvertString(c.sanitizer.Sanitize(content))
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}

	return strings.TrimSpace(markdown), nil
}

// ToHTML sanitizes model output meant for the editor. Output without any tags
// is split on blank lines into paragraphs.
func (c *HTMLConverter) ToHTML(text string) string {
	text = strings.TrimSpace(stripCodeFence(text))
	if text == "" {
		return ""
	}

	if !strings.Contains(text, "<") {
		var b strings.Builder
		for _, para := range strings.Split(text, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			b.WriteString("<p>")
			b.WriteString(html.EscapeString(para))
			b.WriteString("</p>")
		}
		return b.String()
	}

	return c.sanitizer.Sanitize(text)
}

// stripCodeFence removes a ```html ... ``` wrapper some models add
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.Index(t, "\n"); nl >= 0 {
		t = t[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(t), "```")
}
