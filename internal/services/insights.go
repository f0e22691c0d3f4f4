package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/lumen-backend/internal/data/repos/tracking"
	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/platform/apierr"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

type SkillStateView struct {
	SkillID              string     `json:"skill_id"`
	SkillName            string     `json:"skill_name"`
	Subject              string     `json:"subject,omitempty"`
	GradeLevel           string     `json:"grade_level,omitempty"`
	ProbabilityMastery   float64    `json:"probability_mastery"`
	TotalAttempts        int        `json:"total_attempts"`
	CorrectAttempts      int        `json:"correct_attempts"`
	ConsecutiveCorrect   int        `json:"consecutive_correct"`
	ConsecutiveIncorrect int        `json:"consecutive_incorrect"`
	LastAttemptAt        *time.Time `json:"last_attempt_at,omitempty"`
	Status               string     `json:"status"`
	SuggestedAction      string     `json:"suggested_action"`
}

type LearnerStateResult struct {
	UserID          uuid.UUID        `json:"user_id"`
	Skills          []SkillStateView `json:"skills"`
	MasteredCount   int              `json:"mastered_count"`
	LearningCount   int              `json:"learning_count"`
	StrugglingCount int              `json:"struggling_count"`
}

type LearnerOverview struct {
	UserID          uuid.UUID `json:"user_id"`
	OverallStatus   string    `json:"overall_status"`
	MeanMastery     float64   `json:"mean_mastery"`
	SkillCount      int       `json:"skill_count"`
	StrugglingCount int       `json:"struggling_count"`
}

type ClassOverviewResult struct {
	Learners        []LearnerOverview `json:"learners"`
	MasteredCount   int               `json:"mastered_count"`
	LearningCount   int               `json:"learning_count"`
	StrugglingCount int               `json:"struggling_count"`
	MeanMastery     float64           `json:"mean_mastery"`
}

// InsightsService is a pure read-side projection over mastery state; it
// never mutates anything.
type InsightsService interface {
	LearnerState(ctx context.Context, userID uuid.UUID) (*LearnerStateResult, error)
	ClassOverview(ctx context.Context, strugglingOnly bool, minMastery *float64) (*ClassOverviewResult, error)
}

type insightsService struct {
	log    *logger.Logger
	skills tracking.SkillRepo
	states tracking.StudentSkillStateRepo
	params MasteryParams
}

func NewInsightsService(
	log *logger.Logger,
	skills tracking.SkillRepo,
	states tracking.StudentSkillStateRepo,
	params MasteryParams,
) InsightsService {
	return &insightsService{
		log:    log.With("service", "InsightsService"),
		skills: skills,
		states: states,
		params: params,
	}
}

func (s *insightsService) LearnerState(ctx context.Context, userID uuid.UUID) (*LearnerStateResult, error) {
	if userID == uuid.Nil {
		return nil, apierr.Validation("missing_user_id", fmt.Errorf("user_id is required"))
	}

	dbc := dbctx.Context{Ctx: ctx}
	states, err := s.states.ListByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list skill states: %w", err)
	}

	skillIDs := make([]string, 0, len(states))
	for _, st := range states {
		skillIDs = append(skillIDs, st.SkillID)
	}
	skills, err := s.skills.GetByIDs(dbc, skillIDs)
	if err != nil {
		return nil, fmt.Errorf("load skill registry entries: %w", err)
	}
	skillByID := make(map[string]*types.Skill, len(skills))
	for _, sk := range skills {
		skillByID[sk.SkillID] = sk
	}

	result := &LearnerStateResult{UserID: userID, Skills: make([]SkillStateView, 0, len(states))}
	for _, st := range states {
		view := SkillStateView{
			SkillID:              st.SkillID,
			ProbabilityMastery:   st.ProbabilityMastery,
			TotalAttempts:        st.TotalAttempts,
			CorrectAttempts:      st.CorrectAttempts,
			ConsecutiveCorrect:   st.ConsecutiveCorrect,
			ConsecutiveIncorrect: st.ConsecutiveIncorrect,
			LastAttemptAt:        st.LastAttemptAt,
		}
		if sk := skillByID[st.SkillID]; sk != nil {
			view.SkillName = sk.SkillName
			view.Subject = sk.Subject
			view.GradeLevel = sk.GradeLevel
		}
		view.Status = Classify(s.params, st.ProbabilityMastery, st.TotalAttempts)
		view.SuggestedAction = SuggestedAction(view.Status)

		switch view.Status {
		case types.StatusMastered:
			result.MasteredCount++
		case types.StatusStruggling:
			result.StrugglingCount++
		default:
			result.LearningCount++
		}
		result.Skills = append(result.Skills, view)
	}
	return result, nil
}

func (s *insightsService) ClassOverview(ctx context.Context, strugglingOnly bool, minMastery *float64) (*ClassOverviewResult, error) {
	states, err := s.states.ListAll(dbctx.Context{Ctx: ctx}, minMastery)
	if err != nil {
		return nil, fmt.Errorf("list skill states: %w", err)
	}

	byUser := map[uuid.UUID][]*types.StudentSkillState{}
	for _, st := range states {
		byUser[st.UserID] = append(byUser[st.UserID], st)
	}

	result := &ClassOverviewResult{Learners: make([]LearnerOverview, 0, len(byUser))}
	var masterySum float64
	var stateCount int

	for userID, userStates := range byUser {
		overview := LearnerOverview{UserID: userID, SkillCount: len(userStates)}
		var sum float64
		// Worst-case roll-up: one STRUGGLING skill marks the learner
		// STRUGGLING; MASTERED requires every skill mastered.
		overall := types.StatusMastered
		for _, st := range userStates {
			sum += st.ProbabilityMastery
			masterySum += st.ProbabilityMastery
			stateCount++
			switch Classify(s.params, st.ProbabilityMastery, st.TotalAttempts) {
			case types.StatusStruggling:
				overview.StrugglingCount++
				overall = types.StatusStruggling
			case types.StatusLearning:
				if overall != types.StatusStruggling {
					overall = types.StatusLearning
				}
			}
		}
		overview.OverallStatus = overall
		overview.MeanMastery = sum / float64(len(userStates))

		switch overall {
		case types.StatusMastered:
			result.MasteredCount++
		case types.StatusStruggling:
			result.StrugglingCount++
		default:
			result.LearningCount++
		}

		if strugglingOnly && overall != types.StatusStruggling {
			continue
		}
		result.Learners = append(result.Learners, overview)
	}

	sort.Slice(result.Learners, func(i, j int) bool {
		return result.Learners[i].UserID.String() < result.Learners[j].UserID.String()
	})

	if stateCount > 0 {
		result.MeanMastery = masterySum / float64(stateCount)
	}
	return result, nil
}
