package sentiment

import (
	"reflect"
	"testing"
)

func TestAnalyzePositive(t *testing.T) {
	// 3 positive hits (great, love, excellent) over 7 words.
	res := Analyze("This is great, I love it, excellent!")
	if res.Label != Positive {
		t.Fatalf("expected positive, got %s", res.Label)
	}
	if res.Confidence <= 0.5 {
		t.Fatalf("expected confidence > 0.5, got %f", res.Confidence)
	}
}

func TestAnalyzeNegative(t *testing.T) {
	res := Analyze("Honestly this is terrible and the worst thing I have seen")
	if res.Label != Negative {
		t.Fatalf("expected negative, got %s", res.Label)
	}
	if res.Confidence <= 0 || res.Confidence > 1 {
		t.Fatalf("confidence out of range: %f", res.Confidence)
	}
}

func TestAnalyzeTieIsNeutral(t *testing.T) {
	res := Analyze("I love the idea but hate the execution")
	if res.Label != Neutral {
		t.Fatalf("expected neutral on tie, got %s", res.Label)
	}
	if res.Confidence != 0.5 {
		t.Fatalf("tie confidence must be 0.5, got %f", res.Confidence)
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	res := Analyze("   ")
	if res.Label != Neutral || res.Confidence != 0.5 {
		t.Fatalf("empty text should be neutral 0.5, got %+v", res)
	}
}

func TestAnalyzeWordBoundaries(t *testing.T) {
	// "unlikely" must not count as a hit for "like".
	res := Analyze("It is unlikely I would notice this at all")
	if res.Label != Neutral {
		t.Fatalf("substring must not match, got %s", res.Label)
	}
}

func TestAnalyzeConfidenceCapped(t *testing.T) {
	res := Analyze("great great great")
	if res.Confidence != 1 {
		t.Fatalf("confidence should cap at 1, got %f", res.Confidence)
	}
}

func TestExtractTopics(t *testing.T) {
	texts := []string{
		"The price seems steep for what you get.",
		"I do love the design though, the colour really stands out.",
	}
	got := ExtractTopics(texts)
	want := []string{"price", "design", "emotion"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("topics: got %v, want %v", got, want)
	}
}

func TestExtractTopicsEmpty(t *testing.T) {
	if got := ExtractTopics(nil); got != nil {
		t.Fatalf("expected nil for no texts, got %v", got)
	}
}

func TestKeyThemesCapped(t *testing.T) {
	texts := []string{"I think the experience was good, I feel the value and quality of the service and product matter, like it could be better"}
	themes := KeyThemes(texts)
	if len(themes) != maxKeyThemes {
		t.Fatalf("expected %d themes, got %v", maxKeyThemes, themes)
	}
}
