package source

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// punctReplacer maps typographic unicode punctuation to its ASCII form and
// drops zero-width characters. Upstream descriptions mix copy-pasted rich
// text with plain text.
var punctReplacer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"“", `"`,
	"”", `"`,
	"–", "-",
	"—", "--",
	" ", " ",
	"​", "",
	"‌", "",
	"‍", "",
	"\uFEFF", "",
)

// noisePatterns match boilerplate that adds nothing to the generation
// prompt: application instructions, recruiter hashtags, EEO statements,
// bare URLs.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)please mention.*?when applying.*?$`),
	regexp.MustCompile(`#[A-Z0-9-_]+`),
	regexp.MustCompile(`https?://\S+`),
	regexp.MustCompile(`(?is)equal opportunity employer.*?$`),
	regexp.MustCompile(`(?is)we are an equal opportunity.*?$`),
	regexp.MustCompile(`(?is)applicant privacy policy.*?$`),
}

var (
	multiBlank = regexp.MustCompile(`\n\s*\n\s*\n+`)
	multiSpace = regexp.MustCompile(` {3,}`)
)

// StripHTML extracts the text content of an HTML fragment, separating block
// boundaries with newlines. Malformed markup degrades to whatever text the
// tokenizer can recover, never to an error.
func StripHTML(fragment string) string {
	tok := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skipDepth := 0

	for {
		switch tok.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := tok.TagName()
			switch string(name) {
			case "script", "style":
				skipDepth++
			case "p", "div", "br", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			switch string(name) {
			case "script", "style":
				if skipDepth > 0 {
					skipDepth--
				}
			case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteByte('\n')
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tok.Text())
			}
		}
	}
}

// CleanDescription prepares a raw description for the generation prompt:
// punctuation normalization, noise removal, whitespace collapsing, and a
// word cap. Capped text ends with an ellipsis marker.
func CleanDescription(text string, maxWords int) string {
	if text == "" {
		return ""
	}

	text = punctReplacer.Replace(text)
	text = norm.NFKD.String(text)

	for _, p := range noisePatterns {
		text = p.ReplaceAllString(text, "")
	}

	text = multiBlank.ReplaceAllString(text, "\n\n")
	text = multiSpace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	text = strings.Join(kept, "\n")

	if maxWords > 0 {
		words := strings.Fields(text)
		if len(words) > maxWords {
			text = strings.Join(words[:maxWords], " ") + "..."
		}
	}
	return text
}
