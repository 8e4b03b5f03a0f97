package prompt

import (
	"fmt"
	"strings"

	"storyloom/internal/domain/models/docsystem"
	"storyloom/internal/domain/models/style"
	"storyloom/internal/vocabulary"
)

// Modes and modifiers accepted by BuildWritingPrompt
const (
	ModeEnhance  = "enhance"
	ModeContinue = "continue"

	ModifierAction   = "action"
	ModifierDialogue = "dialogue"
)

// Prompt is a system instruction plus the user message
type Prompt struct {
	System string
	User   string
}

// Composer builds completion prompts from style preferences.
// Output is deterministic for the same inputs.
type Composer struct {
	vocab *vocabulary.Registry
}

// NewComposer creates a composer over a vocabulary registry
func NewComposer(vocab *vocabulary.Registry) *Composer {
	return &Composer{vocab: vocab}
}

// StyleGuide renders both styles as a bulleted list, one line per category:
//
//	- Narrative voice: First-person. Told by a narrator who ...
//
// A nil style renders the vocabulary defaults.
func (c *Composer) StyleGuide(author, book *style.Style) string {
	var b strings.Builder
	b.WriteString("Author style:\n")
	c.writeStyle(&b, style.KindAuthor, author)
	b.WriteString("\nBook style:\n")
	c.writeStyle(&b, style.KindBook, book)
	return b.String()
}

func (c *Composer) writeStyle(b *strings.Builder, kind style.Kind, s *style.Style) {
	for _, cat := range c.vocab.Categories(kind) {
		value := s.Get(cat.Key)
		if value == "" {
			value = cat.Default
		}
		fmt.Fprintf(b, "- %s: %s. %s\n", cat.Label, value, c.vocab.Describe(kind, cat.Key, value))
	}
}

// BuildWritingPrompt builds the system instruction for enhance/continue with an
// optional action or dialogue modifier. Unknown modes are treated as continue.
func (c *Composer) BuildWritingPrompt(author, book *style.Style, mode, modifier string) string {
	var b strings.Builder

	b.WriteString("You are a skilled creative writing assistant helping an author with their manuscript.\n")
	b.WriteString("Write in the author's established style and respect the following preferences.\n\n")
	b.WriteString(c.StyleGuide(author, book))
	b.WriteString("\nRules:\n")

	switch mode {
	case ModeEnhance:
		b.WriteString("- Rewrite the passage to improve clarity, rhythm and vividness.\n")
		b.WriteString("- Preserve the meaning, events, names and point of view of the original.\n")
		b.WriteString("- Keep roughly the same length as the original passage.\n")
	default:
		b.WriteString("- Continue the story directly from where the passage ends.\n")
		b.WriteString("- Do not repeat or summarize the existing text.\n")
		b.WriteString("- Write one to three paragraphs.\n")
	}

	switch modifier {
	case ModifierAction:
		b.WriteString("- Focus on physical action and movement; keep sentences tight and momentum high.\n")
	case ModifierDialogue:
		b.WriteString("- Focus on dialogue between characters; use speech to reveal character and advance the scene.\n")
	}

	b.WriteString("- Do not add commentary, headings or quotation marks around your answer.\n")
	return b.String()
}

// BuildAutocompletePrompt asks for MaxSuggestions alternatives joined by SuggestionSeparator
func (c *Composer) BuildAutocompletePrompt(author, book *style.Style, mode, modifier, text string) Prompt {
	system := c.BuildWritingPrompt(author, book, mode, modifier) +
		fmt.Sprintf("- Offer exactly %d distinct alternatives separated by %s and nothing else.\n",
			MaxSuggestions, SuggestionSeparator)

	return Prompt{
		System: system,
		User:   "Passage:\n" + text,
	}
}

// BuildAnalysisPrompt asks for a JSON critique scored per criterion
func (c *Composer) BuildAnalysisPrompt(author, book *style.Style, text string) Prompt {
	var b strings.Builder
	b.WriteString("You are an experienced fiction editor. Critique the passage against the author's stated preferences.\n\n")
	b.WriteString(c.StyleGuide(author, book))
	b.WriteString("\nRespond with a single JSON object and nothing else, shaped like:\n")
	b.WriteString(`{"summary": "<two or three sentences>", "overall": <0-10>`)
	for _, criterion := range docsystem.AnalysisCriteria {
		fmt.Fprintf(&b, `, "%s": {"feedback": "<specific advice>", "score": <0-10>}`, criterion)
	}
	b.WriteString("}\n")
	b.WriteString("Scores are integers from 0 (poor) to 10 (excellent).\n")

	return Prompt{
		System: b.String(),
		User:   "Passage:\n" + text,
	}
}

// BuildOutlinePrompt asks for a tag-delimited nonfiction outline
func (c *Composer) BuildOutlinePrompt(topic string, setup docsystem.BookSetup) Prompt {
	var b strings.Builder
	b.WriteString("You are a nonfiction book planner. Produce a chapter outline for the requested book.\n")
	if setup.Template != "" {
		fmt.Fprintf(&b, "Book template: %s.\n", setup.Template)
	}
	if setup.Length != "" {
		fmt.Fprintf(&b, "Target length: %s.\n", setup.Length)
	}
	b.WriteString("Return every chapter in this exact format and nothing else:\n")
	b.WriteString("<section><title>Chapter title</title><notes>What the chapter covers</notes></section>\n")

	return Prompt{
		System: b.String(),
		User:   "Topic: " + topic,
	}
}

// ChapterContext is what BuildChapterPrompt needs to draft one nonfiction chapter
type ChapterContext struct {
	BookTitle string
	Topic     string
	Setup     *docsystem.BookSetup
	Outline   []docsystem.OutlineSection
	Title     string
	Notes     string
}

// BuildChapterPrompt asks for HTML content for one chapter of a nonfiction book
func (c *Composer) BuildChapterPrompt(author, book *style.Style, ch ChapterContext) Prompt {
	var b strings.Builder
	b.WriteString("You are a nonfiction ghostwriter drafting one chapter of a book.\n\n")
	b.WriteString(c.StyleGuide(author, book))
	b.WriteString("\n")
	if ch.BookTitle != "" {
		fmt.Fprintf(&b, "Book title: %s\n", ch.BookTitle)
	}
	if ch.Topic != "" {
		fmt.Fprintf(&b, "Book topic: %s\n", ch.Topic)
	}
	if ch.Setup != nil {
		if ch.Setup.Template != "" {
			fmt.Fprintf(&b, "Book template: %s\n", ch.Setup.Template)
		}
		if ch.Setup.Length != "" {
			fmt.Fprintf(&b, "Target length: %s\n", ch.Setup.Length)
		}
	}
	if len(ch.Outline) > 0 {
		b.WriteString("Full outline:\n")
		b.WriteString(FormatOutline(ch.Outline))
	}
	b.WriteString("\nWrite the chapter as HTML using only <h2>, <h3>, <p>, <ul>, <ol>, <li>, <blockquote>, <strong> and <em>.\n")
	b.WriteString("Do not wrap the answer in a code block or add commentary.\n")

	user := "Chapter: " + ch.Title
	if ch.Notes != "" {
		user += "\nNotes: " + ch.Notes
	}

	return Prompt{System: b.String(), User: user}
}
