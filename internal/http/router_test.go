package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/lumenlearn/lumen-backend/internal/domain"
	httpH "github.com/lumenlearn/lumen-backend/internal/http/handlers"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
	"github.com/lumenlearn/lumen-backend/internal/services"
)

type stubGrounding struct {
	result *services.AnswerResult
	err    error
}

func (s *stubGrounding) Answer(ctx context.Context, query string) (*services.AnswerResult, error) {
	return s.result, s.err
}

type stubRetrieval struct{}

func (s *stubRetrieval) Search(ctx context.Context, in services.SearchInput) ([]services.ChunkMatch, error) {
	return []services.ChunkMatch{}, nil
}

func (s *stubRetrieval) ConceptContext(ctx context.Context, label string) ([]services.ConceptRelation, error) {
	return []services.ConceptRelation{
		{Concept: label, RelatedConcept: "Decimals", RelationshipType: "RELATES_TO", Direction: "outgoing"},
	}, nil
}

type stubInsights struct{}

func (s *stubInsights) LearnerState(ctx context.Context, userID uuid.UUID) (*services.LearnerStateResult, error) {
	return &services.LearnerStateResult{UserID: userID, Skills: []services.SkillStateView{}}, nil
}

func (s *stubInsights) ClassOverview(ctx context.Context, strugglingOnly bool, minMastery *float64) (*services.ClassOverviewResult, error) {
	return &services.ClassOverviewResult{Learners: []services.LearnerOverview{}}, nil
}

type stubMastery struct {
	last services.RecordEventInput
}

func (s *stubMastery) RecordEvent(ctx context.Context, in services.RecordEventInput) (*services.RecordEventResult, error) {
	s.last = in
	return &services.RecordEventResult{
		UserID:     in.UserID,
		SkillID:    in.SkillID,
		NewMastery: 0.6,
		Status:     types.StatusLearning,
	}, nil
}

type stubRegistry struct{}

func (s *stubRegistry) UpsertSkills(ctx context.Context, inputs []services.SkillInput) ([]*types.Skill, error) {
	return []*types.Skill{}, nil
}

func (s *stubRegistry) ListSkills(ctx context.Context) ([]*types.Skill, error) {
	return []*types.Skill{}, nil
}

func (s *stubRegistry) ListEvents(ctx context.Context, userID uuid.UUID, limit int) ([]*types.LearningEvent, error) {
	return []*types.LearningEvent{}, nil
}

func newTestRouter(t *testing.T, grounding services.GroundingService) (*gin.Engine, *stubMastery) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	mastery := &stubMastery{}
	registry := &stubRegistry{}
	return NewRouter(RouterConfig{
		Log:              log,
		HealthHandler:    httpH.NewHealthHandler(),
		RetrievalHandler: httpH.NewRetrievalHandler(&stubRetrieval{}),
		AnswerHandler:    httpH.NewAnswerHandler(grounding),
		SkillHandler:     httpH.NewSkillHandler(registry),
		EventHandler:     httpH.NewEventHandler(mastery, registry),
		InsightsHandler:  httpH.NewInsightsHandler(&stubInsights{}),
	}), mastery
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewServerServesRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	srv := NewServer(RouterConfig{Log: log, HealthHandler: httpH.NewHealthHandler()})
	if srv.Engine == nil {
		t.Fatal("server has no engine")
	}
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	w := httptest.NewRecorder()
	srv.Engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthcheck via server: code=%d body=%q", w.Code, w.Body.String())
	}
}

func TestHealthcheck(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := doJSON(t, r, http.MethodGet, "/healthcheck", "")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthcheck: code=%d body=%q", w.Code, w.Body.String())
	}
}

func TestAnswerUnavailableWithoutModel(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := doJSON(t, r, http.MethodPost, "/api/answer", `{"query":"what is a fraction?"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("code=%d", w.Code)
	}
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "answering_disabled" {
		t.Fatalf("error code=%q", env.Error.Code)
	}
}

func TestAnswerReturnsRefusalShape(t *testing.T) {
	grounding := &stubGrounding{result: &services.AnswerResult{
		Answer:     services.RefusalAnswer,
		Citations:  []services.Citation{},
		Confidence: 0,
	}}
	r, _ := newTestRouter(t, grounding)
	w := doJSON(t, r, http.MethodPost, "/api/answer", `{"query":"unknowable"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("refusal must be 200, got %d", w.Code)
	}
	var got services.AnswerResult
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Answer != services.RefusalAnswer || got.Confidence != 0 {
		t.Fatalf("refusal payload: %+v", got)
	}
}

func TestAnswerRejectsEmptyQuery(t *testing.T) {
	r, _ := newTestRouter(t, &stubGrounding{})
	w := doJSON(t, r, http.MethodPost, "/api/answer", `{"query":"  "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d", w.Code)
	}
}

func TestRecordEventRequiresIsCorrect(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	body := `{"user_id":"` + uuid.NewString() + `","skill_id":"math.fractions.add"}`
	w := doJSON(t, r, http.MethodPost, "/api/events", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRecordEventPassesThrough(t *testing.T) {
	r, mastery := newTestRouter(t, nil)
	user := uuid.New()
	body := `{"user_id":"` + user.String() + `","skill_id":"math.fractions.add","is_correct":false,"attempts":2}`
	w := doJSON(t, r, http.MethodPost, "/api/events", body)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
	if mastery.last.UserID != user || mastery.last.IsCorrect || mastery.last.Attempts != 2 {
		t.Fatalf("input not forwarded: %+v", mastery.last)
	}
}

func TestLearnerStateRejectsBadUUID(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := doJSON(t, r, http.MethodGet, "/api/learners/not-a-uuid/state", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d", w.Code)
	}
}

func TestConceptContextRoute(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := doJSON(t, r, http.MethodGet, "/api/concepts/Fractions/context", "")
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
	var payload struct {
		Concept   string                     `json:"concept"`
		Relations []services.ConceptRelation `json:"relations"`
		Count     int                        `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Concept != "Fractions" || payload.Count != 1 {
		t.Fatalf("payload: %+v", payload)
	}
}

func TestSearchRejectsInvalidJSON(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := doJSON(t, r, http.MethodPost, "/api/search", `{`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d", w.Code)
	}
}
