package sentiment

import "strings"

// topicKeywords is the fixed topic dictionary. A topic is identified iff any
// of its keywords appears anywhere in the combined lower-cased text; there is
// no frequency weighting. Slice order fixes the output order.
var topicKeywords = []struct {
	Topic    string
	Keywords []string
}{
	{"price", []string{"price", "cost", "expensive", "cheap", "afford", "budget", "value for money"}},
	{"quality", []string{"quality", "well made", "durable", "reliable", "sturdy", "premium"}},
	{"brand", []string{"brand", "reputation", "trust", "well-known", "logo"}},
	{"design", []string{"design", "look", "style", "appearance", "colour", "color", "aesthetic"}},
	{"functionality", []string{"function", "feature", "works", "useful", "practical", "easy to use"}},
	{"emotion", []string{"feel", "love", "hate", "excited", "worried", "happy", "disappointed"}},
	{"social", []string{"friends", "family", "share", "community", "social", "recommend"}},
	{"convenience", []string{"convenient", "quick", "easy", "simple", "accessible", "hassle"}},
}

// ExtractTopics returns the topics present across the supplied texts.
func ExtractTopics(texts []string) []string {
	combined := strings.ToLower(strings.Join(texts, " "))
	if combined == "" {
		return nil
	}

	var topics []string
	for _, entry := range topicKeywords {
		for _, kw := range entry.Keywords {
			if strings.Contains(combined, kw) {
				topics = append(topics, entry.Topic)
				break
			}
		}
	}
	return topics
}

// themeVocabulary backs the non-LLM key-theme fallback.
var themeVocabulary = []string{
	"experience", "feel", "think", "like", "good", "bad",
	"better", "important", "value", "quality", "service", "product",
}

const maxKeyThemes = 5

// KeyThemes picks up to five vocabulary words that occur in the combined
// text. It is the degraded path when LLM summarization is unavailable.
func KeyThemes(texts []string) []string {
	combined := strings.ToLower(strings.Join(texts, " "))
	if combined == "" {
		return nil
	}

	var themes []string
	for _, word := range themeVocabulary {
		if strings.Contains(combined, word) {
			themes = append(themes, word)
			if len(themes) == maxKeyThemes {
				break
			}
		}
	}
	return themes
}
