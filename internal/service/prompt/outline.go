package prompt

import (
	"strings"

	"storyloom/internal/domain/models/docsystem"
)

const (
	sectionOpen  = "<section>"
	sectionClose = "</section>"
)

// ParseOutline extracts {title, notes} pairs from model output of the form
//
//	<section><title>...</title><notes>...</notes></section>
//
// repeated. Text between blocks is ignored. A block is dropped when it is
// unterminated, when another <section> opens before it closes, when either
// tag is missing, or when the title is blank. Never fails.
func ParseOutline(text string) []docsystem.OutlineSection {
	sections := []docsystem.OutlineSection{}

	rest := text
	for {
		start := strings.Index(rest, sectionOpen)
		if start < 0 {
			break
		}
		rest = rest[start+len(sectionOpen):]

		end := strings.Index(rest, sectionClose)
		if end < 0 {
			break // unterminated
		}

		body := rest[:end]
		if nested := strings.Index(body, sectionOpen); nested >= 0 {
			// The open block was never closed; resume at the inner <section>
			rest = rest[nested:]
			continue
		}
		rest = rest[end+len(sectionClose):]

		title, ok := tagContent(body, "title")
		if !ok || title == "" {
			continue
		}
		notes, ok := tagContent(body, "notes")
		if !ok {
			continue
		}

		sections = append(sections, docsystem.OutlineSection{Title: title, Notes: notes})
	}

	return sections
}

// tagContent returns the trimmed text between the first <tag> and the following </tag>
func tagContent(s, tag string) (string, bool) {
	open, closing := "<"+tag+">", "</"+tag+">"

	start := strings.Index(s, open)
	if start < 0 {
		return "", false
	}
	s = s[start+len(open):]

	end := strings.Index(s, closing)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(s[:end]), true
}

// FormatOutline renders sections back into the tag grammar ParseOutline reads
func FormatOutline(sections []docsystem.OutlineSection) string {
	var b strings.Builder
	for _, s := range sections {
		b.WriteString(sectionOpen)
		b.WriteString("<title>")
		b.WriteString(s.Title)
		b.WriteString("</title><notes>")
		b.WriteString(s.Notes)
		b.WriteString("</notes>")
		b.WriteString(sectionClose)
		b.WriteString("\n")
	}
	return b.String()
}
