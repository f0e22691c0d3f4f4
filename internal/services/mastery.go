package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lumenlearn/lumen-backend/internal/clients/redis"
	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/data/repos/tracking"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/platform/apierr"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

// MasteryParams are the tunable update and classification constants. The
// asymmetric step sizes (reward larger than penalty) are deliberate.
type MasteryParams struct {
	StepCorrect           float64
	StepIncorrect         float64
	SeedProbability       float64
	MasteredAbove         float64
	StrugglingBelow       float64
	StrugglingMinAttempts int
	RetryBudget           int
}

func DefaultMasteryParams() MasteryParams {
	return MasteryParams{
		StepCorrect:           0.1,
		StepIncorrect:         0.05,
		SeedProbability:       0.5,
		MasteredAbove:         0.9,
		StrugglingBelow:       0.6,
		StrugglingMinAttempts: 3,
		RetryBudget:           3,
	}
}

// ApplyOutcome advances a skill state by one practice outcome. Pure: no
// storage access, callable from any transaction or test.
func ApplyOutcome(st *types.StudentSkillState, isCorrect bool, attempts int, ts time.Time, p MasteryParams) {
	if st == nil {
		return
	}
	if attempts < 1 {
		attempts = 1
	}

	if isCorrect {
		st.ProbabilityMastery = clamp01(st.ProbabilityMastery + p.StepCorrect)
		st.ConsecutiveCorrect++
		st.ConsecutiveIncorrect = 0
		st.CorrectAttempts++
	} else {
		st.ProbabilityMastery = clamp01(st.ProbabilityMastery - p.StepIncorrect)
		st.ConsecutiveIncorrect++
		st.ConsecutiveCorrect = 0
	}
	st.TotalAttempts += attempts
	t := ts
	st.LastAttemptAt = &t
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Classify maps a state onto MASTERED / LEARNING / STRUGGLING. Both
// comparisons are strict: probability exactly at a threshold stays LEARNING.
func Classify(p MasteryParams, probability float64, totalAttempts int) string {
	if probability > p.MasteredAbove {
		return types.StatusMastered
	}
	if probability < p.StrugglingBelow && totalAttempts > p.StrugglingMinAttempts {
		return types.StatusStruggling
	}
	return types.StatusLearning
}

func SuggestedAction(status string) string {
	switch status {
	case types.StatusStruggling:
		return "provide remediation"
	case types.StatusMastered:
		return "ready for next challenge"
	default:
		return "continue practice"
	}
}

type RecordEventInput struct {
	UserID           uuid.UUID
	SkillID          string
	IsCorrect        bool
	Attempts         int
	TimeSpentSeconds int
	EventType        string
	SourceText       string
	Metadata         json.RawMessage
	Timestamp        time.Time
}

type RecordEventResult struct {
	UserID          uuid.UUID `json:"user_id"`
	SkillID         string    `json:"skill_id"`
	PreviousMastery float64   `json:"previous_mastery"`
	NewMastery      float64   `json:"new_mastery"`
	Status          string    `json:"status"`
	SuggestedAction string    `json:"suggested_action"`
}

type MasteryService interface {
	// RecordEvent appends one learning event and updates the (user, skill)
	// projection in the same transaction. Updates for one key are serialized
	// by a row-level lock; different keys proceed in parallel.
	RecordEvent(ctx context.Context, in RecordEventInput) (*RecordEventResult, error)
}

type masteryService struct {
	db     *gorm.DB
	log    *logger.Logger
	skills tracking.SkillRepo
	events tracking.LearningEventRepo
	states tracking.StudentSkillStateRepo
	bus    redis.MasteryBus
	params MasteryParams
}

func NewMasteryService(
	db *gorm.DB,
	log *logger.Logger,
	skills tracking.SkillRepo,
	events tracking.LearningEventRepo,
	states tracking.StudentSkillStateRepo,
	bus redis.MasteryBus,
	params MasteryParams,
) MasteryService {
	return &masteryService{
		db:     db,
		log:    log.With("service", "MasteryService"),
		skills: skills,
		events: events,
		states: states,
		bus:    bus,
		params: params,
	}
}

func (s *masteryService) RecordEvent(ctx context.Context, in RecordEventInput) (*RecordEventResult, error) {
	if in.UserID == uuid.Nil {
		return nil, apierr.Validation("missing_user_id", fmt.Errorf("user_id is required"))
	}
	in.SkillID = strings.TrimSpace(in.SkillID)
	if in.SkillID == "" {
		return nil, apierr.Validation("missing_skill_id", fmt.Errorf("skill_id is required"))
	}
	skill, err := s.skills.GetByID(dbctx.Context{Ctx: ctx}, in.SkillID)
	if err != nil {
		return nil, fmt.Errorf("load skill %q: %w", in.SkillID, err)
	}
	if skill == nil {
		return nil, apierr.Validation("unknown_skill", fmt.Errorf("skill %q is not registered", in.SkillID))
	}

	if in.Attempts < 1 {
		in.Attempts = 1
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}
	eventType := in.EventType
	switch eventType {
	case "":
		eventType = types.EventTypeStudentAction
	case types.EventTypeStudentAction, types.EventTypeAgentAction:
	default:
		return nil, apierr.Validation("invalid_event_type", fmt.Errorf("event_type %q is not recognized", in.EventType))
	}

	var result *RecordEventResult
	budget := s.params.RetryBudget
	if budget < 1 {
		budget = 1
	}

	for attempt := 1; ; attempt++ {
		result, err = s.applyOnce(ctx, in, eventType)
		if err == nil {
			break
		}
		if attempt >= budget || !isRetryableTxError(err) {
			if isRetryableTxError(err) {
				return nil, apierr.Upstream("mastery_update_contention", err)
			}
			return nil, err
		}
		s.log.Debug("Retrying mastery update after conflict",
			"user_id", in.UserID,
			"skill_id", in.SkillID,
			"attempt", attempt,
			"error", err,
		)
	}

	if s.bus != nil {
		msg := redis.StateChange{
			UserID:          in.UserID.String(),
			SkillID:         in.SkillID,
			PreviousMastery: result.PreviousMastery,
			NewMastery:      result.NewMastery,
			Status:          result.Status,
			OccurredAt:      in.Timestamp,
		}
		if pubErr := s.bus.Publish(ctx, msg); pubErr != nil {
			s.log.Warn("Mastery state change publish failed",
				"user_id", in.UserID,
				"skill_id", in.SkillID,
				"error", pubErr,
			)
		}
	}
	return result, nil
}

// applyOnce runs the event insert and projection update as one atomic unit.
// If the state upsert fails the event insert rolls back with it.
func (s *masteryService) applyOnce(ctx context.Context, in RecordEventInput, eventType string) (*RecordEventResult, error) {
	var out RecordEventResult

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		ev := &types.LearningEvent{
			UserID:           in.UserID,
			SkillID:          in.SkillID,
			IsCorrect:        in.IsCorrect,
			Attempts:         in.Attempts,
			TimeSpentSeconds: in.TimeSpentSeconds,
			EventType:        eventType,
			SourceText:       in.SourceText,
			Timestamp:        in.Timestamp,
		}
		if len(in.Metadata) > 0 {
			ev.Metadata = datatypes.JSON(in.Metadata)
		}
		if _, err := s.events.Create(dbc, []*types.LearningEvent{ev}); err != nil {
			return fmt.Errorf("append learning event: %w", err)
		}

		st, err := s.states.GetForUpdate(dbc, in.UserID, in.SkillID)
		if err != nil {
			return fmt.Errorf("lock skill state: %w", err)
		}

		created := false
		if st == nil {
			st = &types.StudentSkillState{
				UserID:             in.UserID,
				SkillID:            in.SkillID,
				ProbabilityMastery: s.params.SeedProbability,
			}
			created = true
		}

		out.PreviousMastery = st.ProbabilityMastery
		ApplyOutcome(st, in.IsCorrect, in.Attempts, in.Timestamp, s.params)

		if created {
			if err := s.states.Create(dbc, st); err != nil {
				return fmt.Errorf("create skill state: %w", err)
			}
		} else {
			if err := s.states.Save(dbc, st); err != nil {
				return fmt.Errorf("save skill state: %w", err)
			}
		}

		out.UserID = in.UserID
		out.SkillID = in.SkillID
		out.NewMastery = st.ProbabilityMastery
		out.Status = Classify(s.params, st.ProbabilityMastery, st.TotalAttempts)
		out.SuggestedAction = SuggestedAction(out.Status)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &out, nil
}

// isRetryableTxError recognizes lost races that a fresh transaction will win:
// serialization failures, deadlocks, and the two-writers-seed-the-same-row
// unique violation.
func isRetryableTxError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range []string{
		"40001", // serialization_failure
		"40P01", // deadlock_detected
		"duplicate key",
		"UNIQUE constraint",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
