// Package matcher decides whether a target phrase occurs in normalized OCR text.
//
// Matching runs an ordered cascade of strategies, strictest first, and stops at the
// first one that succeeds:
//   - WholeWord: the phrase occurs with no letter or digit on either side
//   - Compact: the phrase without spaces equals a run of adjacent words glued together
//     ("nalla sopara" vs "nallasopara", and the reverse)
//   - FuzzyWord: a single word within a small edit distance that shares the
//     phrase's first characters ("vasa1" vs "vasai")
//   - RegexJoined: the phrase's words separated by at most a couple of stray characters
//
// Text passed to Contains is expected to be the output of textnorm.Normalize. The
// phrase is normalized by the matcher itself.
package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"addressproof/internal/textnorm"
)

// Strategy identifies which rule of the cascade produced a match.
type Strategy int

const (
	// StrategyNone means no rule matched.
	StrategyNone Strategy = iota
	// StrategyWholeWord is an exact occurrence bounded by non-alphanumerics.
	StrategyWholeWord
	// StrategyCompact is an occurrence with internal spaces removed.
	StrategyCompact
	// StrategyFuzzyWord is a single-word match within the edit distance bound.
	StrategyFuzzyWord
	// StrategyRegexJoined is an occurrence with short gaps between the phrase's words.
	StrategyRegexJoined
)

// String returns the strategy name used in logs and metrics labels.
func (s Strategy) String() string {
	switch s {
	case StrategyWholeWord:
		return "whole_word"
	case StrategyCompact:
		return "compact"
	case StrategyFuzzyWord:
		return "fuzzy_word"
	case StrategyRegexJoined:
		return "regex_joined"
	default:
		return "none"
	}
}

// Match is the outcome of a Contains call.
type Match struct {
	Found    bool
	Strategy Strategy
}

// Options holds the tolerances of the fuzzy strategies.
type Options struct {
	// MaxEditDistance accepts a fuzzy candidate at or below this Levenshtein distance.
	MaxEditDistance int

	// MaxEditRatio accepts a fuzzy candidate whose distance divided by the target
	// length is at or below this value, even when MaxEditDistance is exceeded.
	MaxEditRatio float64

	// PrefixLength is how many leading characters a fuzzy candidate must share with
	// the target. Targets shorter than this never match fuzzily.
	PrefixLength int

	// MaxLengthDelta skips fuzzy candidates whose length differs from the target by more.
	MaxLengthDelta int

	// MaxJoinGap is the largest number of characters allowed between phrase words
	// by the regex-joined strategy.
	MaxJoinGap int
}

// DefaultOptions returns the tolerances used for address and name matching.
func DefaultOptions() Options {
	return Options{
		MaxEditDistance: 1,
		MaxEditRatio:    0.15,
		PrefixLength:    3,
		MaxLengthDelta:  2,
		MaxJoinGap:      2,
	}
}

type attempt struct {
	strategy Strategy
	try      func(text, phrase string) bool
}

// Matcher runs the strategy cascade. It holds no mutable state and is safe for
// concurrent use.
type Matcher struct {
	opts     Options
	attempts []attempt
}

// New returns a Matcher with the given tolerances. Negative tolerances are treated as 0.
func New(opts Options) *Matcher {
	opts.MaxEditDistance = max(opts.MaxEditDistance, 0)
	opts.MaxEditRatio = max(opts.MaxEditRatio, 0)
	opts.PrefixLength = max(opts.PrefixLength, 0)
	opts.MaxLengthDelta = max(opts.MaxLengthDelta, 0)
	opts.MaxJoinGap = max(opts.MaxJoinGap, 0)

	m := &Matcher{opts: opts}
	m.attempts = []attempt{
		{strategy: StrategyWholeWord, try: matchWholeWord},
		{strategy: StrategyCompact, try: matchCompact},
		{strategy: StrategyFuzzyWord, try: m.matchFuzzyWord},
		{strategy: StrategyRegexJoined, try: m.matchRegexJoined},
	}
	return m
}

var defaultMatcher = New(DefaultOptions())

// Contains reports whether phrase occurs in the normalized text using the default tolerances.
func Contains(text, phrase string) Match {
	return defaultMatcher.Contains(text, phrase)
}

// Options returns the tolerances the matcher was built with.
func (m *Matcher) Options() Options {
	return m.opts
}

// Contains reports whether phrase occurs in text and which strategy found it.
func (m *Matcher) Contains(text, phrase string) Match {
	phrase = textnorm.String(phrase)
	if phrase == "" || text == "" {
		return Match{Strategy: StrategyNone}
	}

	for _, a := range m.attempts {
		if a.try(text, phrase) {
			return Match{Found: true, Strategy: a.strategy}
		}
	}
	return Match{Strategy: StrategyNone}
}

// matchWholeWord looks for phrase with no alphanumeric byte directly before or after it.
func matchWholeWord(text, phrase string) bool {
	for start := 0; start < len(text); {
		i := strings.Index(text[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(phrase)
		if (i == 0 || !isAlnum(text[i-1])) && (end == len(text) || !isAlnum(text[end])) {
			return true
		}
		start = i + 1
	}
	return false
}

// matchCompact glues runs of adjacent text words together and compares them with
// the phrase stripped of spaces and hyphens. Every candidate starts and ends on a
// word boundary.
func matchCompact(text, phrase string) bool {
	target := compactWord(phrase)
	if target == "" {
		return false
	}

	words := strings.FieldsFunc(text, func(r rune) bool { return r == ' ' || r == '-' })
	for i := range words {
		var run strings.Builder
		for j := i; j < len(words); j++ {
			run.WriteString(words[j])
			if run.Len() >= len(target) {
				if run.String() == target {
					return true
				}
				break
			}
			if !strings.HasPrefix(target, run.String()) {
				break
			}
		}
	}
	return false
}

// matchFuzzyWord compares the compacted phrase with every whitespace-delimited word.
func (m *Matcher) matchFuzzyWord(text, phrase string) bool {
	target := compactWord(phrase)
	if len(target) < m.opts.PrefixLength || len(target) == 0 {
		return false
	}
	prefix := target[:m.opts.PrefixLength]

	for _, word := range strings.Fields(text) {
		if abs(len(word)-len(target)) > m.opts.MaxLengthDelta {
			continue
		}
		if !strings.HasPrefix(word, prefix) {
			continue
		}
		d := Levenshtein(word, target)
		if d <= m.opts.MaxEditDistance || float64(d)/float64(len(target)) <= m.opts.MaxEditRatio {
			return true
		}
	}
	return false
}

// matchRegexJoined joins the phrase's words with a bounded wildcard gap.
func (m *Matcher) matchRegexJoined(text, phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return false
	}
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}

	gap := fmt.Sprintf(`.{0,%d}`, m.opts.MaxJoinGap)
	re, err := regexp.Compile(`\b` + strings.Join(words, gap) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

func compactWord(phrase string) string {
	return strings.ReplaceAll(textnorm.Compact(phrase), "-", "")
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
