package subkana

import "strings"

// DefaultColor is used for anything without a known level.
const DefaultColor = "#666666"

var levelColors = map[Level]string{
	LevelN5: "#4caf50",
	LevelN4: "#2196f3",
	LevelN3: "#ffeb3b",
	LevelN2: "#ff9800",
	LevelN1: "#f44336",
}

var levelDescriptions = map[Level]string{
	LevelN5: "Beginner",
	LevelN4: "Elementary",
	LevelN3: "Intermediate",
	LevelN2: "Upper intermediate",
	LevelN1: "Advanced",
}

// Color returns the display color for the level.
func (l Level) Color() string {
	if c, ok := levelColors[l]; ok {
		return c
	}
	return DefaultColor
}

// BadgeTextColor returns a text color readable on top of Color.
// N3 is yellow, so it needs dark text.
func (l Level) BadgeTextColor() string {
	if l == LevelN3 {
		return "#333333"
	}
	return "#ffffff"
}

// Description returns a short difficulty label.
func (l Level) Description() string {
	return levelDescriptions[l]
}

// partsOfSpeech maps tokenizer tags (UniDic/IPADIC) to display names.
var partsOfSpeech = map[string]string{
	"動詞":   "verb",
	"名詞":   "noun",
	"形容詞":  "i-adjective",
	"形状詞":  "na-adjective",
	"副詞":   "adverb",
	"助詞":   "particle",
	"助動詞":  "auxiliary verb",
	"接続詞":  "conjunction",
	"感動詞":  "interjection",
	"連体詞":  "adnominal",
	"代名詞":  "pronoun",
	"接頭辞":  "prefix",
	"接尾辞":  "suffix",
	"記号":   "symbol",
	"補助記号": "symbol",
}

// PartOfSpeechName returns the display name for a part-of-speech tag.
// Unknown tags are returned unchanged.
func PartOfSpeechName(tag string) string {
	if name, ok := partsOfSpeech[tag]; ok {
		return name
	}
	return tag
}

// IsPunctuation reports whether a part-of-speech tag marks punctuation or a symbol.
func IsPunctuation(tag string) bool {
	if tag == "" {
		return false
	}
	if tag == "記号" || tag == "補助記号" {
		return true
	}
	return strings.Contains(tag, "punct") || strings.Contains(tag, "symbol")
}
