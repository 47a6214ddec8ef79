package blocks

import (
	"bytes"
	"html"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	richTextPolicy = newRichTextPolicy()
	strictPolicy   = bluemonday.StrictPolicy()
	markdown       = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

func newRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "b", "strong", "i", "em", "u",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"table", "thead", "tbody", "tr", "td", "th",
		"a", "span", "div", "blockquote", "pre", "code",
	)
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowStandardURLs()
	return p
}

// SafeHTML sanitises operator-authored rich text against the allow-list.
func SafeHTML(s string) template.HTML {
	if s == "" {
		return ""
	}
	return template.HTML(richTextPolicy.Sanitize(s))
}

// Markdown converts markdown to sanitised HTML.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return SafeHTML(src)
	}
	return SafeHTML(buf.String())
}

// StripTags returns the plain text of an HTML fragment with collapsed whitespace.
func StripTags(s string) string {
	plain := html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(plain), " ")
}

// Excerpt returns the first max characters of the plain text of s,
// followed by "..." when it was cut.
func Excerpt(s string, max int) string {
	plain := StripTags(s)
	if utf8.RuneCountInString(plain) <= max {
		return plain
	}
	r := []rune(plain)
	return strings.TrimSpace(string(r[:max])) + "..."
}

// FormatDate renders a publication date, or nothing for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 January 2006")
}
