// Package relevance ranks standard sections against a free-text query or a
// keyword set and builds highlighted snippets for the matches.
//
// Everything in this package is a pure function of its inputs: no I/O, no
// shared state, safe for concurrent use by independent requests.
package relevance

// Record is one searchable unit of standard text.
type Record struct {
	ID            int64
	StandardID    int64
	Title         string
	Content       string
	SectionNumber string
	Chapter       string
}

// Query is either free text or a keyword set. Keywords win when both are set
// and the engine runs in keyword-tally mode.
type Query struct {
	Text     string
	Keywords []string
}

// ScoredResult is a record with its relevance score, highlighted snippet and
// 1-based rank after sorting.
type ScoredResult struct {
	Record
	Score   float64
	Snippet string
	Rank    int
}

// Mode selects the scoring scale.
type Mode string

const (
	// ModeFreeText scores on the bounded 0.1..1.0 scale.
	ModeFreeText Mode = "freetext"
	// ModeKeywordTally scores by weighted keyword hit counts.
	ModeKeywordTally Mode = "keywordTally"
)

// KeywordWeights is the weight table for keyword-tally scoring.
type KeywordWeights struct {
	Title   int
	Content int
}

// DefaultKeywordWeights is used by every tally call site: a title hit counts
// double a content hit.
var DefaultKeywordWeights = KeywordWeights{Title: 2, Content: 1}

// Marker wraps highlighted matches inside a snippet.
type Marker struct {
	Open  string
	Close string
}

// DefaultMarker is the HTML mark element.
var DefaultMarker = Marker{Open: "<mark>", Close: "</mark>"}
