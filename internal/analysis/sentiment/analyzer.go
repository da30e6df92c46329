package sentiment

import (
	"strings"
	"unicode"
)

// Label classifies the overall tone of a response.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

// Result carries the label plus a confidence in [0,1].
type Result struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "love": {},
	"like": {}, "positive": {}, "amazing": {}, "wonderful": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "hate": {}, "dislike": {},
	"negative": {}, "awful": {}, "horrible": {}, "worst": {},
}

// Analyze scores a piece of text against fixed positive and negative word
// lists. Hit counts are normalized by total word count; the label goes to
// the strictly larger ratio and confidence is min(10*ratio, 1). Ties,
// including empty text, are neutral at 0.5.
func Analyze(text string) Result {
	words := tokenize(text)
	if len(words) == 0 {
		return Result{Label: Neutral, Confidence: 0.5}
	}

	var pos, neg int
	for _, w := range words {
		if _, ok := positiveWords[w]; ok {
			pos++
		}
		if _, ok := negativeWords[w]; ok {
			neg++
		}
	}

	total := float64(len(words))
	posRatio := float64(pos) / total
	negRatio := float64(neg) / total

	switch {
	case posRatio > negRatio:
		return Result{Label: Positive, Confidence: confidence(posRatio)}
	case negRatio > posRatio:
		return Result{Label: Negative, Confidence: confidence(negRatio)}
	default:
		return Result{Label: Neutral, Confidence: 0.5}
	}
}

func confidence(ratio float64) float64 {
	c := 10 * ratio
	if c > 1 {
		return 1
	}
	return c
}

// tokenize lowercases and splits on anything that is not a letter, digit or
// apostrophe, so "great," and "Great" both count as "great".
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
