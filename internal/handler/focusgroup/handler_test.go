package focusgroup

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	personaModel "github.com/panelwise/backend/internal/model/persona"
	"github.com/panelwise/backend/internal/service/provider"
	"github.com/panelwise/backend/internal/service/simulation"
)

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, _ provider.Request) (string, error) {
	return "I think it sounds great, I love the idea.", nil
}

func newTestRouter() (*chi.Mux, *simulation.Controller) {
	ctrl := simulation.NewController(stubGenerator{}, nil, simulation.Config{})
	r := chi.NewRouter()
	New(ctrl).RegisterRoutes(r)
	return r, ctrl
}

func postJSON(t *testing.T, r http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func startSession(t *testing.T, r http.Handler, payload map[string]any) string {
	t.Helper()
	rec := postJSON(t, r, "/focus-group/simulate", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("simulate status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var result struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode simulate response: %v", err)
	}
	if result.SessionID == "" {
		t.Fatal("simulate response missing sessionId")
	}
	return result.SessionID
}

func TestSimulateHappyPath(t *testing.T) {
	r, _ := newTestRouter()

	rec := postJSON(t, r, "/focus-group/simulate", map[string]any{
		"personas": []any{
			"Sarah, 34, Marketing Manager, Manchester",
			map[string]any{"name": "Tom", "age": 52, "occupation": "Plumber"},
		},
		"message": "A new energy drink for busy professionals.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var result struct {
		SessionID  string `json:"sessionId"`
		State      string `json:"state"`
		Transcript []struct {
			PersonaName string `json:"personaName"`
			Sentiment   *struct {
				Label string `json:"label"`
			} `json:"sentiment"`
		} `json:"transcript"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.State != "completed" {
		t.Errorf("state: got %s, want completed", result.State)
	}
	if len(result.Transcript) != 2 {
		t.Fatalf("transcript entries: got %d, want 2", len(result.Transcript))
	}
	if result.Transcript[0].PersonaName != "Sarah" {
		t.Errorf("first persona name: got %q", result.Transcript[0].PersonaName)
	}
	if result.Transcript[0].Sentiment == nil || result.Transcript[0].Sentiment.Label != "positive" {
		t.Errorf("sentiment not attached: %+v", result.Transcript[0].Sentiment)
	}
}

func TestSimulateRejectsBadInput(t *testing.T) {
	r, _ := newTestRouter()

	rec := postJSON(t, r, "/focus-group/simulate", map[string]any{
		"message": "no personas",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing personas: got %d, want 400", rec.Code)
	}

	rec = postJSON(t, r, "/focus-group/simulate", map[string]any{
		"personas":      []any{"Sarah, 34"},
		"message":       "hello",
		"personaStyles": map[string]string{"0": "belligerent"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown style: got %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/focus-group/simulate", bytes.NewReader([]byte("{not json")))
	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("malformed body: got %d, want 400", rec2.Code)
	}
}

func TestQuestionPayloadShapes(t *testing.T) {
	r, _ := newTestRouter()

	rec := postJSON(t, r, "/focus-group/simulate", map[string]any{
		"personas": []any{"Sarah, 34, Nurse, Leeds"},
		"message":  "A meal delivery service.",
		"questions": []any{
			"How often would you use it?",
			map[string]any{"text": "What price feels fair?", "afterRound": 1},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var result struct {
		CurrentRound int `json:"currentRound"`
		Transcript   []struct {
			Role string `json:"role"`
		} `json:"transcript"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Initial entry, then two moderator questions with one answer each.
	moderators := 0
	for _, e := range result.Transcript {
		if e.Role == "moderator" {
			moderators++
		}
	}
	if moderators != 2 {
		t.Errorf("expected both questions asked, saw %d moderator entries", moderators)
	}
	if result.CurrentRound != 2 {
		t.Errorf("currentRound: got %d, want 2", result.CurrentRound)
	}
}

type captureGenerator struct {
	mu   sync.Mutex
	reqs []provider.Request
}

func (g *captureGenerator) Generate(_ context.Context, req provider.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reqs = append(g.reqs, req)
	return "Fair enough, I would give it a go.", nil
}

func TestSimulateNormalizesStyleCase(t *testing.T) {
	gen := &captureGenerator{}
	ctrl := simulation.NewController(gen, nil, simulation.Config{})
	r := chi.NewRouter()
	New(ctrl).RegisterRoutes(r)

	rec := postJSON(t, r, "/focus-group/simulate", map[string]any{
		"personas":      []any{"Sarah, 34, Nurse, Leeds"},
		"message":       "A new savings app.",
		"personaStyles": map[string]string{"0": "Contrarian"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	gen.mu.Lock()
	defer gen.mu.Unlock()
	if len(gen.reqs) != 1 {
		t.Fatalf("expected 1 generation call, got %d", len(gen.reqs))
	}
	if !strings.Contains(gen.reqs[0].System, personaModel.StyleContrarian.Directive()) {
		t.Errorf("mixed-case style assignment must still apply its directive, got system prompt %q", gen.reqs[0].System)
	}
}

func TestSimulateRejectsNegativeQuestionSchedule(t *testing.T) {
	r, _ := newTestRouter()

	rec := postJSON(t, r, "/focus-group/simulate", map[string]any{
		"personas": []any{"Sarah, 34, Nurse, Leeds"},
		"message":  "A new savings app.",
		"questions": []any{
			map[string]any{"text": "Thoughts?", "afterRound": -2},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative afterRound: got %d, want 400", rec.Code)
	}
}

func TestStatusAndUnknownSession(t *testing.T) {
	r, _ := newTestRouter()

	id := startSession(t, r, map[string]any{
		"personas":       []any{"Sarah, 34, Nurse, Leeds"},
		"message":        "A meal delivery service.",
		"openDiscussion": true,
	})

	req := httptest.NewRequest(http.MethodGet, "/focus-group/"+id+"/status", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var status struct {
		State            string `json:"state"`
		TranscriptLength int    `json:"transcriptLength"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.State != "running" || status.TranscriptLength != 1 {
		t.Errorf("unexpected status: %+v", status)
	}

	req = httptest.NewRequest(http.MethodGet, "/focus-group/nope/status", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session: got %d, want 404", rec.Code)
	}
}

func TestPauseInjectConflict(t *testing.T) {
	r, _ := newTestRouter()

	id := startSession(t, r, map[string]any{
		"personas":       []any{"Sarah, 34, Nurse, Leeds", "Tom, 52, Plumber, Hull"},
		"message":        "A budget gym chain.",
		"openDiscussion": true,
	})

	rec := postJSON(t, r, "/focus-group/"+id+"/pause", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pause: got %d, body %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, r, "/focus-group/"+id+"/inject", map[string]string{"question": "Thoughts?"})
	if rec.Code != http.StatusConflict {
		t.Errorf("inject on paused: got %d, want 409", rec.Code)
	}

	rec = postJSON(t, r, "/focus-group/"+id+"/resume", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("resume: got %d", rec.Code)
	}

	rec = postJSON(t, r, "/focus-group/"+id+"/inject", map[string]string{"question": "Thoughts?"})
	if rec.Code != http.StatusOK {
		t.Errorf("inject after resume: got %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestContinueAndComplete(t *testing.T) {
	r, ctrl := newTestRouter()

	id := startSession(t, r, map[string]any{
		"personas":       []any{"Sarah, 34, Nurse, Leeds"},
		"message":        "A city bike scheme.",
		"openDiscussion": true,
	})

	rec := postJSON(t, r, "/focus-group/"+id+"/continue", map[string]string{"message": "Would you pay monthly?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("continue: got %d, body %s", rec.Code, rec.Body.String())
	}
	var round struct {
		Kind    string `json:"kind"`
		Entries []any  `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &round); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if round.Kind != "question" || len(round.Entries) != 2 {
		t.Errorf("unexpected round: kind=%s entries=%d", round.Kind, len(round.Entries))
	}

	rec = postJSON(t, r, "/focus-group/"+id+"/complete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: got %d, body %s", rec.Code, rec.Body.String())
	}
	var completed struct {
		Analytics struct {
			TotalResponses int `json:"totalResponses"`
		} `json:"analytics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &completed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if completed.Analytics.TotalResponses != 2 {
		t.Errorf("total responses: got %d, want 2", completed.Analytics.TotalResponses)
	}

	if ctrl.ActiveSessions() != 0 {
		t.Errorf("completed session should leave the registry")
	}
}
