// Package subkana provides the core types for caption analysis results.
package subkana

import (
	"fmt"
	"unicode/utf8"
)

// Level is a JLPT proficiency level. N5 is the easiest, N1 the hardest.
type Level string

const (
	LevelN5   Level = "N5"
	LevelN4   Level = "N4"
	LevelN3   Level = "N3"
	LevelN2   Level = "N2"
	LevelN1   Level = "N1"
	LevelNone Level = "" // Token not found in the level vocabulary
)

// AllLevels lists every level from easiest to hardest.
var AllLevels = []Level{LevelN5, LevelN4, LevelN3, LevelN2, LevelN1}

// Rank orders levels from 1 (N5) to 5 (N1). Unknown levels rank 0.
func (l Level) Rank() int {
	for i, lv := range AllLevels {
		if lv == l {
			return i + 1
		}
	}
	return 0
}

// Valid reports whether l is one of the five levels.
func (l Level) Valid() bool {
	return l.Rank() > 0
}

// ParseLevel parses a level code such as "N3".
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return LevelNone, fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}

// None is the sentinel the analysis service uses for absent fields.
const None = "*"

// Token is a single word of an analyzed sentence.
type Token struct {
	Surface         string `json:"surface"`              // Text as written in the sentence
	Lemma           string `json:"lemma"`                // Dictionary form
	PartOfSpeech    string `json:"pos"`                  // Tag in the tokenizer's taxonomy, e.g. "動詞"
	ConjugationForm string `json:"conj"`                 // e.g. "連用形", "*" when not conjugated
	Reading         string `json:"reading,omitempty"`    // Kana reading
	Meaning         string `json:"meaning,omitempty"`    // Gloss
	Romanization    string `json:"romaji,omitempty"`     // Romaji reading
	Level           Level  `json:"jlpt_level,omitempty"` // Empty when the word has no level
}

// HasValue reports whether an optional token field carries real data.
func HasValue(s string) bool {
	return s != "" && s != None
}

// Span is a half-open [Start, End) range of rune offsets into a sentence.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of runes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans share at least one rune.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Within reports whether the span is non-empty and fits in a sentence of n runes.
func (s Span) Within(n int) bool {
	return s.Start >= 0 && s.Start < s.End && s.End <= n
}

// GrammarPattern is a grammar rule matched somewhere in the sentence.
type GrammarPattern struct {
	ID            string   `json:"id"`             // Rule identifier, e.g. "n5_teimasu"
	Name          string   `json:"name"`           // Display name, e.g. "〜ています"
	Level         Level    `json:"level"`          // Level the rule belongs to
	Meaning       string   `json:"meaning"`        // Explanation of the rule
	Structure     []string `json:"structure"`      // Matched surface forms, in order
	Span          Span     `json:"span"`           // Where the rule matched
	MatchedTokens []int    `json:"matched_tokens"` // Indices into AnalysisResult.Tokens
}

// AnalysisResult is the breakdown the analysis service returns for a sentence.
type AnalysisResult struct {
	Sentence        string           `json:"sentence"`
	Tokens          []Token          `json:"tokens"`
	GrammarPatterns []GrammarPattern `json:"grammar_patterns"`
}

// Validate checks that every grammar span lies inside the sentence.
func (r *AnalysisResult) Validate() error {
	n := utf8.RuneCountInString(r.Sentence)
	for i, p := range r.GrammarPatterns {
		if !p.Span.Within(n) {
			return fmt.Errorf("grammar pattern %d (%s): span [%d,%d) outside sentence of length %d",
				i, p.ID, p.Span.Start, p.Span.End, n)
		}
	}
	return nil
}
