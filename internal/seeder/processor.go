package seeder

import (
	"path"
	"regexp"
	"strings"
	"unicode"
)

// ContentProcessor handles text processing and cleanup
type ContentProcessor struct {
	// Regex patterns for cleaning content
	multiWhitespace *regexp.Regexp
	htmlTags        *regexp.Regexp
	slugInvalid     *regexp.Regexp
}

func NewContentProcessor() *ContentProcessor {
	return &ContentProcessor{
		multiWhitespace: regexp.MustCompile(`[ \t\f\v\r]+`),
		htmlTags:        regexp.MustCompile(`<[^>]*>`),
		slugInvalid:     regexp.MustCompile(`[^a-z0-9]+`),
	}
}

// CleanContent strips markup, normalizes whitespace inside lines and keeps
// paragraphs separated by a single blank line.
func (cp *ContentProcessor) CleanContent(content string) string {
	content = cp.htmlTags.ReplaceAllString(content, "")

	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(cp.multiWhitespace.ReplaceAllString(line, " "))
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}

// JoinParagraphs cleans each block and joins the non-empty, non-repeated ones.
func (cp *ContentProcessor) JoinParagraphs(blocks []string) string {
	var kept []string
	for _, b := range cp.removeDuplicates(blocks) {
		if b = strings.Join(strings.Fields(b), " "); b != "" {
			kept = append(kept, b)
		}
	}
	return strings.Join(cp.removeDuplicates(kept), "\n\n")
}

// Summarize returns the first sentence-ish chunk of text, at most maxLen
// bytes, cut on a word boundary.
func (cp *ContentProcessor) Summarize(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= maxLen {
		return text
	}

	cut := strings.LastIndex(text[:maxLen], " ")
	if cut <= 0 {
		cut = maxLen
	}
	return strings.TrimRight(text[:cut], ",;:.") + "…"
}

// Slug derives a page slug from its url path. The root path is "home".
func (cp *ContentProcessor) Slug(urlPath string) string {
	base := path.Base(strings.TrimSuffix(urlPath, "/"))
	if base == "." || base == "/" || base == "" {
		return "home"
	}
	slug := strings.Trim(cp.slugInvalid.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if slug == "" {
		return "page"
	}
	return slug
}

// removeDuplicates removes duplicate strings from a slice
func (cp *ContentProcessor) removeDuplicates(items []string) []string {
	seen := make(map[string]bool)
	var result []string

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}

// CountWords estimates word count in text
func (cp *ContentProcessor) CountWords(text string) int {
	if text == "" {
		return 0
	}

	// Split by whitespace and count
	words := strings.FieldsFunc(text, func(c rune) bool {
		return unicode.IsSpace(c) || unicode.IsPunct(c)
	})

	// Filter out very short "words"
	count := 0
	for _, word := range words {
		if len(strings.TrimSpace(word)) > 1 {
			count++
		}
	}

	return count
}
