// Package navcursor implements the small wrap-around index coordinators
// that back keyboard navigation over topic search results and the message
// list of the currently selected topic, plus the visibility policy that
// decides whether a correlated request is navigable.
package navcursor

// TopicReference identifies one topic-search match for SearchContext.
type TopicReference struct {
	FullPath string
}

// SearchContext holds the results of a topic-search and a wrap-around
// cursor over them. The match list is immutable once set: advancing or
// retreating only ever moves currentIndex, never the slice. Not
// goroutine-safe — it's a single-session UI state object, driven from one
// command thread at a time.
type SearchContext struct {
	term         string
	matches      []TopicReference
	currentIndex int
}

// NewSearchContext builds a SearchContext over the given term and an
// already-computed ordered list of matches. currentIndex starts at -1 for
// an empty match list, 0 otherwise.
func NewSearchContext(term string, matches []TopicReference) *SearchContext {
	idx := -1
	if len(matches) > 0 {
		idx = 0
	}
	cp := make([]TopicReference, len(matches))
	copy(cp, matches)
	return &SearchContext{term: term, matches: cp, currentIndex: idx}
}

// Term returns the original search term, case preserved.
func (s *SearchContext) Term() string { return s.term }

// Matches returns the immutable ordered match list.
func (s *SearchContext) Matches() []TopicReference {
	out := make([]TopicReference, len(s.matches))
	copy(out, s.matches)
	return out
}

// Current returns the currently selected match, or false if there are no
// matches.
func (s *SearchContext) Current() (TopicReference, bool) {
	if s.currentIndex < 0 {
		return TopicReference{}, false
	}
	return s.matches[s.currentIndex], true
}

// CurrentIndex returns the zero-based selected index, or -1 if empty.
func (s *SearchContext) CurrentIndex() int { return s.currentIndex }

// Advance moves to the next match, wrapping to the first after the last.
// No-op on an empty match list.
func (s *SearchContext) Advance() {
	if len(s.matches) == 0 {
		return
	}
	s.currentIndex = (s.currentIndex + 1) % len(s.matches)
}

// Retreat moves to the previous match, wrapping to the last before the
// first. No-op on an empty match list.
func (s *SearchContext) Retreat() {
	if len(s.matches) == 0 {
		return
	}
	s.currentIndex = (s.currentIndex - 1 + len(s.matches)) % len(s.matches)
}
