package simulation

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/panelwise/backend/internal/model/persona"
	simModel "github.com/panelwise/backend/internal/model/simulation"
	"github.com/panelwise/backend/internal/service/provider"
)

// Config carries the generation defaults applied to every persona call.
type Config struct {
	Model         string
	Temperature   float32
	MaxTokens     int
	HistoryWindow int
}

func (c Config) withDefaults() Config {
	if c.Temperature == 0 {
		c.Temperature = 0.8
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 300
	}
	if c.HistoryWindow == 0 {
		c.HistoryWindow = 10
	}
	return c
}

// ArchiveEntry is what the transcript consumer receives when a session ends.
type ArchiveEntry struct {
	SessionID    string                       `json:"sessionId"`
	Stimulus     simModel.Stimulus            `json:"stimulus"`
	PersonaNames []string                     `json:"personaNames"`
	State        simModel.State               `json:"state"`
	Transcript   []simModel.TranscriptEntry   `json:"transcript"`
	Analytics    Analytics                    `json:"analytics"`
	CompletedAt  time.Time                    `json:"completedAt"`
}

// Archiver is the transcript consumer boundary: it accepts the final
// transcript plus analytics for storage. May be nil.
type Archiver interface {
	Archive(entry ArchiveEntry)
}

// Controller owns session state and sequences rounds. All mutating
// operations on one session are serialized; sessions are independent.
type Controller struct {
	registry *Registry
	gen      provider.Generator
	archiver Archiver
	cfg      Config
}

// NewController wires the controller to a generation provider and an
// optional transcript consumer.
func NewController(gen provider.Generator, archiver Archiver, cfg Config) *Controller {
	return &Controller{
		registry: NewRegistry(),
		gen:      gen,
		archiver: archiver,
		cfg:      cfg.withDefaults(),
	}
}

// QuestionSpec is a batch moderator question with its firing round.
type QuestionSpec struct {
	Text       string
	AfterRound int
}

// StartRequest describes a new focus group session.
type StartRequest struct {
	Personas       []persona.Persona
	Stimulus       simModel.Stimulus
	Styles         map[int]persona.Style
	Questions      []QuestionSpec
	OpenDiscussion bool
}

// StartResult reports whatever the start processing produced, including the
// partial transcript when processing halted on a provider failure.
type StartResult struct {
	SessionID    string                     `json:"sessionId"`
	State        simModel.State             `json:"state"`
	CurrentRound int                        `json:"currentRound"`
	Transcript   []simModel.TranscriptEntry `json:"transcript"`
}

// RoundResult reports the outcome of one executed round.
type RoundResult struct {
	SessionID string                     `json:"sessionId"`
	Kind      RoundKind                  `json:"kind"`
	Round     int                        `json:"round"`
	Question  string                     `json:"question,omitempty"`
	Entries   []simModel.TranscriptEntry `json:"entries"`
	State     simModel.State             `json:"state"`
}

// Status is a read-only session snapshot.
type Status struct {
	SessionID            string         `json:"sessionId"`
	State                simModel.State `json:"state"`
	CurrentRound         int            `json:"currentRound"`
	TranscriptLength     int            `json:"transcriptLength"`
	PendingQuestionCount int            `json:"pendingQuestionCount"`
}

// Start validates the request, creates the session, runs the initial
// reaction round and fires any due batch questions. On a provider failure
// the result still carries the session id and the committed transcript,
// alongside the error.
func (c *Controller) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	if len(req.Personas) == 0 {
		return nil, validationErrorf("at least one persona is required")
	}
	if req.Stimulus.Empty() {
		return nil, validationErrorf("stimulus needs a message or an image")
	}
	for i, q := range req.Questions {
		if q.Text == "" {
			return nil, validationErrorf("moderator question %d has no text", i)
		}
		if q.AfterRound < 0 {
			return nil, validationErrorf("moderator question %d has a negative schedule", i)
		}
	}

	questions := make([]simModel.ModeratorQuestion, len(req.Questions))
	for i, q := range req.Questions {
		questions[i] = simModel.ModeratorQuestion{Text: q.Text, ScheduledAfterRound: q.AfterRound}
	}
	styles := make(map[int]persona.Style, len(req.Styles))
	for i, s := range req.Styles {
		styles[i] = s
	}

	sess := &simModel.Session{
		ID:             uuid.NewString(),
		Personas:       req.Personas,
		Stimulus:       req.Stimulus,
		Styles:         styles,
		Questions:      questions,
		OpenDiscussion: req.OpenDiscussion,
		State:          simModel.StateInitializing,
		CreatedAt:      time.Now().UTC(),
	}
	ms := newManagedSession(sess)
	c.registry.add(ms)

	ms.runMu.Lock()
	defer ms.runMu.Unlock()

	if err := c.transition(ms, simModel.StateRunning); err != nil {
		return c.startResult(ms), err
	}
	log.Printf("[sim] session=%s started with %d personas, %d questions", sess.ID, len(sess.Personas), len(questions))

	// Initial reaction round: round 0, no shared history.
	if _, err := c.runRound(ctx, ms, RoundInitial, ""); err != nil {
		c.failSession(ms, err)
		return c.startResult(ms), err
	}

	// Fire every batch question already due, in insertion order.
	for {
		ms.mu.Lock()
		idx, due := sess.NextDueQuestion()
		running := sess.State == simModel.StateRunning
		ms.mu.Unlock()
		if !due || !running {
			break
		}
		if _, err := c.askQuestion(ctx, ms, idx); err != nil {
			c.failSession(ms, err)
			return c.startResult(ms), err
		}
	}

	// Without open discussion there is nothing left to do once the batch
	// queue drains; the session completes in place.
	ms.mu.Lock()
	if !sess.OpenDiscussion && sess.PendingQuestionCount() == 0 && sess.State == simModel.StateRunning {
		sess.State = simModel.StateCompleted
		log.Printf("[sim] session=%s completed at start, %d transcript entries", sess.ID, len(sess.Transcript))
	}
	ms.mu.Unlock()

	return c.startResult(ms), nil
}

// Continue advances a running session: an explicit message becomes an ad-hoc
// moderator question answered by all personas; otherwise the next due batch
// question fires, or one more discussion round runs.
func (c *Controller) Continue(ctx context.Context, id, message string) (*RoundResult, error) {
	ms, err := c.registry.get(id)
	if err != nil {
		return nil, err
	}

	ms.runMu.Lock()
	defer ms.runMu.Unlock()

	if err := c.requireRunning(ms, "continue"); err != nil {
		return nil, err
	}

	if message != "" {
		return c.askAdHoc(ctx, ms, message)
	}

	ms.mu.Lock()
	idx, due := ms.session.NextDueQuestion()
	ms.mu.Unlock()
	if due {
		result, err := c.askQuestion(ctx, ms, idx)
		if err != nil {
			c.failSession(ms, err)
		}
		return result, err
	}

	return c.runDiscussionRound(ctx, ms)
}

// Inject puts a live moderator question to the whole group immediately.
// Semantically identical to Continue with an explicit message.
func (c *Controller) Inject(ctx context.Context, id, question string) (*RoundResult, error) {
	if question == "" {
		return nil, validationErrorf("question text is required")
	}

	ms, err := c.registry.get(id)
	if err != nil {
		return nil, err
	}

	ms.runMu.Lock()
	defer ms.runMu.Unlock()

	if err := c.requireRunning(ms, "inject into"); err != nil {
		return nil, err
	}
	return c.askAdHoc(ctx, ms, question)
}

// Pause suspends a running session. It takes effect at the next
// persona-call boundary of any in-flight round.
func (c *Controller) Pause(id string) error {
	ms, err := c.registry.get(id)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.session.State != simModel.StateRunning {
		return &StateError{SessionID: id, State: ms.session.State, Op: "pause"}
	}
	ms.session.State = simModel.StatePaused
	log.Printf("[sim] session=%s paused", id)
	return nil
}

// Resume returns a paused session to Running. The round interrupted by the
// pause is not retried; the next Continue proceeds with fresh work.
func (c *Controller) Resume(id string) error {
	ms, err := c.registry.get(id)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.session.State != simModel.StatePaused {
		return &StateError{SessionID: id, State: ms.session.State, Op: "resume"}
	}
	ms.session.State = simModel.StateRunning
	log.Printf("[sim] session=%s resumed", id)
	return nil
}

// Status returns a read-only snapshot; permitted in every state.
func (c *Controller) Status(id string) (*Status, error) {
	ms, err := c.registry.get(id)
	if err != nil {
		return nil, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	return &Status{
		SessionID:            id,
		State:                ms.session.State,
		CurrentRound:         ms.session.CurrentRound,
		TranscriptLength:     len(ms.session.Transcript),
		PendingQuestionCount: ms.session.PendingQuestionCount(),
	}, nil
}

// Complete computes analytics over the full transcript, hands the result to
// the transcript consumer and releases the session from the registry. It is
// permitted in every state; a live session transitions to Completed first.
func (c *Controller) Complete(ctx context.Context, id string) (*Analytics, error) {
	ms, err := c.registry.get(id)
	if err != nil {
		return nil, err
	}

	ms.runMu.Lock()
	defer ms.runMu.Unlock()

	ms.mu.Lock()
	if ms.session.State == simModel.StateRunning || ms.session.State == simModel.StatePaused {
		ms.session.State = simModel.StateCompleted
	}
	snapshot := ArchiveEntry{
		SessionID:    id,
		Stimulus:     ms.session.Stimulus,
		PersonaNames: ms.session.PersonaNames(),
		State:        ms.session.State,
		Transcript:   append([]simModel.TranscriptEntry(nil), ms.session.Transcript...),
		CompletedAt:  time.Now().UTC(),
	}
	ms.mu.Unlock()

	analytics := c.buildAnalytics(ctx, snapshot.Transcript, snapshot.PersonaNames)
	snapshot.Analytics = analytics

	if c.archiver != nil {
		c.archiver.Archive(snapshot)
	}
	c.registry.remove(id)
	log.Printf("[sim] session=%s completed and archived, %d transcript entries", id, len(snapshot.Transcript))

	return &analytics, nil
}

// Subscribe streams transcript entries as they are appended. The channel
// closes when the session is completed or the cancel func is called.
func (c *Controller) Subscribe(id string) (<-chan simModel.TranscriptEntry, func(), error) {
	ms, err := c.registry.get(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := ms.subscribe()
	return ch, cancel, nil
}

// ActiveSessions reports how many sessions are currently registered.
func (c *Controller) ActiveSessions() int {
	return c.registry.Len()
}

// askQuestion marks the batch question as asked, appends the moderator
// entry, and runs the persona round for it.
func (c *Controller) askQuestion(ctx context.Context, ms *managedSession, idx int) (*RoundResult, error) {
	ms.mu.Lock()
	q := &ms.session.Questions[idx]
	q.Asked = true
	text := q.Text
	ms.mu.Unlock()

	return c.runQuestionRound(ctx, ms, text)
}

// askAdHoc answers a live moderator question that was never scheduled.
func (c *Controller) askAdHoc(ctx context.Context, ms *managedSession, question string) (*RoundResult, error) {
	result, err := c.runQuestionRound(ctx, ms, question)
	if err != nil {
		c.failSession(ms, err)
	}
	return result, err
}

func (c *Controller) runQuestionRound(ctx context.Context, ms *managedSession, question string) (*RoundResult, error) {
	ms.mu.Lock()
	ms.session.CurrentRound++
	round := ms.session.CurrentRound
	ms.mu.Unlock()

	moderator := simModel.TranscriptEntry{
		Role:      simModel.RoleModerator,
		Content:   question,
		Round:     round,
		Timestamp: time.Now().UTC(),
	}
	ms.appendEntry(moderator)

	entries, err := c.runRound(ctx, ms, RoundQuestion, question)
	result := &RoundResult{
		SessionID: ms.session.ID,
		Kind:      RoundQuestion,
		Round:     round,
		Question:  question,
		Entries:   append([]simModel.TranscriptEntry{moderator}, entries...),
		State:     c.stateOf(ms),
	}
	if err != nil {
		result.State = simModel.StateError
	}
	return result, err
}

func (c *Controller) runDiscussionRound(ctx context.Context, ms *managedSession) (*RoundResult, error) {
	ms.mu.Lock()
	ms.session.CurrentRound++
	round := ms.session.CurrentRound
	ms.mu.Unlock()

	entries, err := c.runRound(ctx, ms, RoundDiscussion, "")
	if err != nil {
		c.failSession(ms, err)
	}
	return &RoundResult{
		SessionID: ms.session.ID,
		Kind:      RoundDiscussion,
		Round:     round,
		Entries:   entries,
		State:     c.stateOf(ms),
	}, err
}

func (c *Controller) requireRunning(ms *managedSession, op string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.session.State != simModel.StateRunning {
		return &StateError{SessionID: ms.session.ID, State: ms.session.State, Op: op}
	}
	return nil
}

// transition applies a state change, rejecting anything outside the table.
func (c *Controller) transition(ms *managedSession, to simModel.State) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if !ms.session.State.CanTransition(to) {
		return &StateError{SessionID: ms.session.ID, State: ms.session.State, Op: "transition to " + string(to)}
	}
	ms.session.State = to
	return nil
}

// failSession moves the session to Error after a provider failure. Entries
// committed before the failure remain in the transcript.
func (c *Controller) failSession(ms *managedSession, cause error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.session.State.CanTransition(simModel.StateError) {
		ms.session.State = simModel.StateError
	}
	log.Printf("[sim] session=%s entered error state: %v", ms.session.ID, cause)
}

func (c *Controller) stateOf(ms *managedSession) simModel.State {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.session.State
}

func (c *Controller) startResult(ms *managedSession) *StartResult {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return &StartResult{
		SessionID:    ms.session.ID,
		State:        ms.session.State,
		CurrentRound: ms.session.CurrentRound,
		Transcript:   append([]simModel.TranscriptEntry(nil), ms.session.Transcript...),
	}
}
