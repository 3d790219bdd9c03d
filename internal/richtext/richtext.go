// Package richtext handles the HTML bodies produced by the note editor.
package richtext

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	notes  = notePolicy()

	blockEnd   = regexp.MustCompile(`(?i)</(p|h[1-6]|li|blockquote|pre)>|<br\s*/?>`)
	listItem   = regexp.MustCompile(`(?i)<li[^>]*>`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// notePolicy keeps the formatting a note editor can produce.
func notePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"h1", "h2", "h3",
		"blockquote", "pre", "code",
		"strong", "em", "u", "s",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Sanitize strips anything from body a note may not contain.
func Sanitize(body string) string {
	return notes.Sanitize(body)
}

// PlainText renders an HTML note body for a terminal.
func PlainText(body string) string {
	s := listItem.ReplaceAllString(body, "- ")
	s = blockEnd.ReplaceAllString(s, "\n")
	s = html.UnescapeString(strict.Sanitize(s))
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// FromPlainText wraps each line of text in a paragraph.
func FromPlainText(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	return b.String()
}
