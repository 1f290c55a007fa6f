// Package format renders knowledge records and generated answers as
// Telegram messages (legacy Markdown parse mode).
package format

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxMessageLength is the longest text sent without truncation.
	MaxMessageLength = 4000
	truncatedLength  = 3900
	truncatedNotice  = "\n\n... (текст сокращен из-за ограничений Telegram)"
)

// CleanMarkdown converts common model markdown to Telegram's legacy
// dialect: headings markers are dropped, bold becomes single asterisks and a
// dangling asterisk is removed so the message still parses.
func CleanMarkdown(text string) string {
	if text == "" {
		return text
	}
	text = strings.ReplaceAll(text, "###", "")
	text = strings.ReplaceAll(text, "##", "")
	text = strings.ReplaceAll(text, "**", "*")
	if strings.Count(text, "*")%2 != 0 {
		i := strings.LastIndex(text, "*")
		text = text[:i] + text[i+1:]
	}
	return text
}

// Truncate shortens text that would exceed Telegram's message limit.
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxMessageLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:truncatedLength]) + truncatedNotice
}

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// EscapeMarkdown escapes user-supplied text for legacy Markdown.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

var (
	reMDLink    = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	reMDHeading = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]*`)
	reMDBullet  = regexp.MustCompile(`(?m)^([ \t]*)[*+][ \t]+`)
)

// StripMarkdown removes markdown syntax, leaving plain text.
func StripMarkdown(text string) string {
	text = reMDLink.ReplaceAllString(text, "$1")
	text = reMDHeading.ReplaceAllString(text, "")
	text = reMDBullet.ReplaceAllString(text, "$1- ")
	text = strings.NewReplacer("**", "", "__", "", "##", "", "*", "", "`", "").Replace(text)
	return strings.TrimSpace(text)
}

func bullets(b *strings.Builder, title, text string) {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	if len(items) == 0 {
		return
	}
	b.WriteString("*" + title + ":*\n")
	for _, it := range items {
		b.WriteString("• " + it + "\n")
	}
	b.WriteString("\n")
}

func section(b *strings.Builder, title, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.WriteString("*" + title + ":*\n" + text + "\n\n")
}
