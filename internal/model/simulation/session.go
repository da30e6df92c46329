package simulation

import (
	"time"

	"github.com/panelwise/backend/internal/model/persona"
)

// Stimulus is the content a focus group reacts to: a message, a base64 image
// payload, or both.
type Stimulus struct {
	Message   string `json:"message,omitempty"`
	ImageData string `json:"imageData,omitempty"`
}

// Empty reports whether the stimulus carries no content at all.
func (s Stimulus) Empty() bool {
	return s.Message == "" && s.ImageData == ""
}

// ModeratorQuestion is a question queued for the group. Batch questions keep
// insertion order; a question fires at most once.
type ModeratorQuestion struct {
	Text                string `json:"text"`
	ScheduledAfterRound int    `json:"scheduledAfterRound"`
	Asked               bool   `json:"asked"`
}

// Role distinguishes who produced a transcript entry.
type Role string

const (
	RoleModerator Role = "moderator"
	RolePersona   Role = "persona"
)

// Sentiment is the heuristic classification attached to persona entries.
type Sentiment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// TranscriptEntry is one utterance in the append-only session transcript.
type TranscriptEntry struct {
	Role         Role       `json:"role"`
	Content      string     `json:"content"`
	Round        int        `json:"round"`
	PersonaIndex *int       `json:"personaIndex,omitempty"`
	PersonaName  string     `json:"personaName,omitempty"`
	Sentiment    *Sentiment `json:"sentiment,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
}

// Session holds all state for one focus group run. Personas, stimulus and
// styles are immutable once the session starts; transcript and questions are
// mutated only by the owning controller.
type Session struct {
	ID             string                  `json:"id"`
	Personas       []persona.Persona       `json:"-"`
	Stimulus       Stimulus                `json:"stimulus"`
	Styles         map[int]persona.Style   `json:"styles,omitempty"`
	Questions      []ModeratorQuestion     `json:"questions"`
	OpenDiscussion bool                    `json:"openDiscussion"`
	CurrentRound   int                     `json:"currentRound"`
	Transcript     []TranscriptEntry       `json:"transcript"`
	State          State                   `json:"state"`
	CreatedAt      time.Time               `json:"createdAt"`
}

// PendingQuestionCount returns how many batch questions have not fired yet.
func (s *Session) PendingQuestionCount() int {
	n := 0
	for _, q := range s.Questions {
		if !q.Asked {
			n++
		}
	}
	return n
}

// NextDueQuestion returns the index of the first unasked question whose
// schedule has been reached. The >= guard keeps questions from being
// stranded when ad-hoc activity advances past their round.
func (s *Session) NextDueQuestion() (int, bool) {
	for i, q := range s.Questions {
		if !q.Asked && s.CurrentRound >= q.ScheduledAfterRound {
			return i, true
		}
	}
	return 0, false
}

// PersonaNames returns the display names of all participants, in slot order.
func (s *Session) PersonaNames() []string {
	names := make([]string, len(s.Personas))
	for i, p := range s.Personas {
		names[i] = p.DisplayName()
	}
	return names
}
