package relevance

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

const (
	// DefaultSnippetWindow is the snippet length in characters.
	DefaultSnippetWindow = 200
	// snippetLeadIn is how many characters before the match the window starts.
	snippetLeadIn = 50
	// Ellipsis marks a cut at either end of a snippet.
	Ellipsis = "…"
)

// Snippet returns a window of content around the first case-insensitive
// occurrence of query. Lengths are measured in runes, so the result is at
// most window+2 runes including ellipses. Invalid UTF-8 sequences come back
// as U+FFFD whether or not the query is found.
func Snippet(content, query string, window int) string {
	if window <= 0 {
		window = DefaultSnippetWindow
	}
	content = strings.ToValidUTF8(content, string(unicode.ReplacementChar))
	runes := []rune(content)

	idx := indexFold(runes, []rune(strings.TrimSpace(query)))
	if idx < 0 {
		if len(runes) <= window {
			return content
		}
		return string(runes[:window]) + Ellipsis
	}

	start := idx - snippetLeadIn
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(runes) {
		end = len(runes)
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(Ellipsis)
	}
	b.WriteString(string(runes[start:end]))
	if end < len(runes) {
		b.WriteString(Ellipsis)
	}
	return b.String()
}

// Highlight wraps every case-insensitive occurrence of any term in text with
// the marker. Terms are matched literally; longer terms win over their own
// prefixes.
func Highlight(text string, marker Marker, terms ...string) string {
	quoted := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	if len(quoted) == 0 || text == "" {
		return text
	}
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })

	re, err := regexp.Compile("(?i)(?:" + strings.Join(quoted, "|") + ")")
	if err != nil {
		return text
	}
	return re.ReplaceAllStringFunc(text, func(m string) string {
		return marker.Open + m + marker.Close
	})
}

// BuildSnippet is Snippet followed by Highlight of the query.
func BuildSnippet(content, query string, window int) string {
	return Highlight(Snippet(content, query, window), DefaultMarker, query)
}

// indexFold returns the rune index of the first case-insensitive occurrence of
// needle in haystack, or -1. An empty needle never matches.
func indexFold(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if unicode.ToLower(haystack[i+j]) != unicode.ToLower(r) {
				continue outer
			}
		}
		return i
	}
	return -1
}
