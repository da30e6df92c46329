package simulation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/panelwise/backend/internal/analysis/sentiment"
	"github.com/panelwise/backend/internal/model/persona"
	simModel "github.com/panelwise/backend/internal/model/simulation"
	"github.com/panelwise/backend/internal/service/provider"
)

// RoundKind selects how persona prompts are framed for a round.
type RoundKind string

const (
	RoundInitial    RoundKind = "initial"
	RoundQuestion   RoundKind = "question"
	RoundDiscussion RoundKind = "discussion"
)

// runRound asks every persona, in slot order, to produce one transcript
// entry. A pause observed at a persona-call boundary aborts the remainder of
// the round; a provider failure aborts it with an error. Entries already
// committed are kept either way.
func (c *Controller) runRound(ctx context.Context, ms *managedSession, kind RoundKind, question string) ([]simModel.TranscriptEntry, error) {
	sess := ms.session
	var produced []simModel.TranscriptEntry

	for i := range sess.Personas {
		ms.mu.Lock()
		if sess.State == simModel.StatePaused {
			ms.mu.Unlock()
			log.Printf("[sim] session=%s paused during %s round, %d of %d personas answered",
				sess.ID, kind, len(produced), len(sess.Personas))
			break
		}
		round := sess.CurrentRound
		history := append([]simModel.TranscriptEntry(nil), sess.Transcript...)
		ms.mu.Unlock()

		req := c.buildRequest(sess, kind, i, question, history)
		text, err := c.gen.Generate(ctx, req)
		if err != nil {
			return produced, fmt.Errorf("persona %d (%s): %w", i, sess.Personas[i].DisplayName(), err)
		}

		res := sentiment.Analyze(text)
		idx := i
		entry := simModel.TranscriptEntry{
			Role:         simModel.RolePersona,
			Content:      text,
			Round:        round,
			PersonaIndex: &idx,
			PersonaName:  sess.Personas[i].DisplayName(),
			Sentiment:    &simModel.Sentiment{Label: string(res.Label), Confidence: res.Confidence},
			Timestamp:    time.Now().UTC(),
		}
		ms.appendEntry(entry)
		produced = append(produced, entry)
	}

	return produced, nil
}

// buildRequest assembles the provider request for one persona turn.
func (c *Controller) buildRequest(sess *simModel.Session, kind RoundKind, index int, question string, history []simModel.TranscriptEntry) provider.Request {
	p := sess.Personas[index]
	req := provider.Request{
		System:  personaSystemPrompt(p, persona.DirectiveFor(sess.Styles, index)),
		Options: c.callOptions(),
	}

	switch kind {
	case RoundInitial:
		req.User = initialPrompt(sess.Stimulus)
		// The stimulus image only accompanies the initial reaction.
		req.ImageData = sess.Stimulus.ImageData
	case RoundQuestion:
		req.User = questionPrompt(question, tailEntries(history, c.cfg.HistoryWindow))
	case RoundDiscussion:
		req.User = discussionPrompt(sess.Stimulus.Message, history)
	}
	return req
}

func (c *Controller) callOptions() provider.Options {
	temp := c.cfg.Temperature
	maxTokens := c.cfg.MaxTokens
	return provider.Options{
		Model:       c.cfg.Model,
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}
}

func personaSystemPrompt(p persona.Persona, directive string) string {
	return fmt.Sprintf(`You are taking part in a consumer focus group as the participant described below. Stay in character throughout.

Participant profile:
%s

Disposition: %s
Answer as this person would, drawing on their background and values. Keep each answer conversational and authentic, two to four sentences.`, p.PromptContext(), directive)
}

func initialPrompt(stim simModel.Stimulus) string {
	var b strings.Builder
	b.WriteString("Introduce yourself in a sentence, then give your genuine first reaction to ")
	switch {
	case stim.Message != "" && stim.ImageData != "":
		fmt.Fprintf(&b, "the image you are shown together with this message: %q. How do they work together for you?", stim.Message)
	case stim.ImageData != "":
		b.WriteString("the image you are shown. What catches your attention, and what do you make of it?")
	default:
		fmt.Fprintf(&b, "this message: %q. What resonates with you, and what puts you off?", stim.Message)
	}
	b.WriteString(" You have not heard from the other participants yet.")
	return b.String()
}

func questionPrompt(question string, history []simModel.TranscriptEntry) string {
	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Discussion so far:\n")
		b.WriteString(formatTranscript(history))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "The moderator asks: %q\nPlease answer the question.", question)
	return b.String()
}

func discussionPrompt(message string, history []simModel.TranscriptEntry) string {
	var b strings.Builder
	if message != "" {
		fmt.Fprintf(&b, "The group is discussing this message: %q\n\n", message)
	}
	if len(history) > 0 {
		b.WriteString("Discussion so far:\n")
		b.WriteString(formatTranscript(history))
		b.WriteString("\n\n")
	}
	b.WriteString("It's your turn. Build on or push back against what the others have said, and add anything new from your own perspective.")
	return b.String()
}

// formatTranscript renders entries as "Speaker: text" lines for prompting.
func formatTranscript(entries []simModel.TranscriptEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		speaker := "Moderator"
		if e.Role == simModel.RolePersona {
			speaker = e.PersonaName
			if speaker == "" {
				speaker = "Participant"
			}
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, e.Content))
	}
	return strings.Join(lines, "\n")
}

// tailEntries returns the last n entries, or all of them when n <= 0.
func tailEntries(entries []simModel.TranscriptEntry, n int) []simModel.TranscriptEntry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}
