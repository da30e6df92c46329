package simulation

import (
	"context"
	"log"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/panelwise/backend/internal/analysis/sentiment"
	simModel "github.com/panelwise/backend/internal/model/simulation"
	"github.com/panelwise/backend/internal/service/provider"
)

// Consensus classifications.
const (
	ConsensusStrongPositive   = "strong_positive"
	ConsensusStrongNegative   = "strong_negative"
	ConsensusNeutral          = "neutral_consensus"
	ConsensusMixed            = "mixed_opinions"
	ConsensusInsufficientData = "insufficient_data"
)

// SentimentSummary aggregates per-response sentiment over the transcript.
type SentimentSummary struct {
	Positive       int                `json:"positiveResponses"`
	Negative       int                `json:"negativeResponses"`
	Neutral        int                `json:"neutralResponses"`
	Distribution   map[string]float64 `json:"distribution"`
	MeanConfidence float64            `json:"meanConfidence"`
}

// Consensus classifies how aligned the group's sentiments are.
type Consensus struct {
	Classification string  `json:"classification"`
	Score          float64 `json:"score"`
}

// ResponseLengths summarizes persona response sizes in words.
type ResponseLengths struct {
	AvgWords float64 `json:"avgWords"`
	MaxWords int     `json:"maxWords"`
	MinWords int     `json:"minWords"`
}

// Analytics is the derived summary of a session's transcript.
type Analytics struct {
	TotalResponses   int              `json:"totalResponses"`
	TotalQuestions   int              `json:"totalQuestions"`
	Sentiment        SentimentSummary `json:"sentiment"`
	Consensus        Consensus        `json:"consensus"`
	ResponseLengths  ResponseLengths  `json:"responseLengths"`
	Topics           []string         `json:"topics"`
	KeyThemes        []string         `json:"keyThemes"`
	PersonasInvolved []string         `json:"personasInvolved"`
}

const maxPersonasReported = 10

// buildAnalytics derives summary metrics from a transcript snapshot. Key
// themes are delegated to the generation provider on a best-effort basis;
// any failure degrades to the keyword-matched fallback.
func (c *Controller) buildAnalytics(ctx context.Context, transcript []simModel.TranscriptEntry, personaNames []string) Analytics {
	var (
		texts      []string
		questions  int
		summary    SentimentSummary
		confidence float64
	)

	for _, e := range transcript {
		switch e.Role {
		case simModel.RoleModerator:
			questions++
		case simModel.RolePersona:
			texts = append(texts, e.Content)
			if e.Sentiment != nil {
				confidence += e.Sentiment.Confidence
				switch sentiment.Label(e.Sentiment.Label) {
				case sentiment.Positive:
					summary.Positive++
				case sentiment.Negative:
					summary.Negative++
				default:
					summary.Neutral++
				}
			} else {
				summary.Neutral++
			}
		}
	}

	total := len(texts)
	summary.Distribution = map[string]float64{
		"positive": percentage(summary.Positive, total),
		"negative": percentage(summary.Negative, total),
		"neutral":  percentage(summary.Neutral, total),
	}
	if total > 0 {
		summary.MeanConfidence = confidence / float64(total)
	}

	if len(personaNames) > maxPersonasReported {
		personaNames = personaNames[:maxPersonasReported]
	}

	return Analytics{
		TotalResponses:   total,
		TotalQuestions:   questions,
		Sentiment:        summary,
		Consensus:        classifyConsensus(summary.Positive, summary.Negative, summary.Neutral),
		ResponseLengths:  measureLengths(texts),
		Topics:           sentiment.ExtractTopics(texts),
		KeyThemes:        c.keyThemes(ctx, texts),
		PersonasInvolved: personaNames,
	}
}

// classifyConsensus applies the fixed fraction thresholds. Fewer than two
// responses cannot express a consensus.
func classifyConsensus(pos, neg, neu int) Consensus {
	total := pos + neg + neu
	if total < 2 {
		return Consensus{Classification: ConsensusInsufficientData}
	}

	p := float64(pos) / float64(total)
	n := float64(neg) / float64(total)
	u := float64(neu) / float64(total)

	switch {
	case p >= 0.70:
		return Consensus{Classification: ConsensusStrongPositive, Score: p}
	case n >= 0.70:
		return Consensus{Classification: ConsensusStrongNegative, Score: n}
	case p+n <= 0.30:
		return Consensus{Classification: ConsensusNeutral, Score: u}
	default:
		return Consensus{Classification: ConsensusMixed, Score: 1 - math.Abs(p-n)}
	}
}

func measureLengths(texts []string) ResponseLengths {
	if len(texts) == 0 {
		return ResponseLengths{}
	}

	var total int
	lengths := ResponseLengths{MinWords: math.MaxInt}
	for _, t := range texts {
		n := len(strings.Fields(t))
		total += n
		if n > lengths.MaxWords {
			lengths.MaxWords = n
		}
		if n < lengths.MinWords {
			lengths.MinWords = n
		}
	}
	lengths.AvgWords = round1(float64(total) / float64(len(texts)))
	return lengths
}

const themesPromptLimit = 4000

// keyThemes asks the provider for a short comma-separated theme list. The
// call is best effort: on any failure the fixed-vocabulary fallback is used.
func (c *Controller) keyThemes(ctx context.Context, texts []string) []string {
	if len(texts) == 0 {
		return nil
	}

	combined := strings.Join(texts, "\n")
	if len(combined) > themesPromptLimit {
		// Back off to a rune boundary so the prompt stays valid UTF-8.
		cut := themesPromptLimit
		for cut > 0 && !utf8.RuneStart(combined[cut]) {
			cut--
		}
		combined = combined[:cut]
	}

	out, err := c.gen.Generate(ctx, provider.Request{
		System:  "You summarize focus group discussions.",
		User:    "List up to five short key themes from the responses below, as a single comma-separated line with no numbering.\n\n" + combined,
		Options: provider.Options{Model: c.cfg.Model},
	})
	if err != nil {
		log.Printf("[sim] key theme summarization failed, using keyword fallback: %v", err)
		return sentiment.KeyThemes(texts)
	}

	var themes []string
	for _, part := range strings.Split(out, ",") {
		theme := strings.TrimSpace(strings.Trim(strings.TrimSpace(part), "."))
		if theme == "" {
			continue
		}
		themes = append(themes, theme)
		if len(themes) == 5 {
			break
		}
	}
	if len(themes) == 0 {
		return sentiment.KeyThemes(texts)
	}
	return themes
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(count) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
