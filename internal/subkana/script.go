package subkana

import "unicode/utf8"

// Caption length bounds, in runes. Shorter fragments are usually a stray
// kana; longer ones are rarely real captions.
const (
	MinCaptionLen = 2
	MaxCaptionLen = 200
)

// IsJapanese reports whether r is a CJK ideograph, hiragana or katakana.
func IsJapanese(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified Ideographs
		return true
	case r >= 0x3041 && r <= 0x3093: // ぁ-ん
		return true
	case r >= 0x30A1 && r <= 0x30F6: // ァ-ヶ
		return true
	}
	return false
}

// ContainsJapanese reports whether s has at least one Japanese character.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		if IsJapanese(r) {
			return true
		}
	}
	return false
}

// ValidCaption reports whether already trimmed text looks like a caption
// worth analyzing.
func ValidCaption(text string) bool {
	if !ContainsJapanese(text) {
		return false
	}
	n := utf8.RuneCountInString(text)
	return n >= MinCaptionLen && n <= MaxCaptionLen
}
