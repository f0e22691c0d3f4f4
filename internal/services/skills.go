package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lumenlearn/lumen-backend/internal/data/repos/tracking"
	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/platform/apierr"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

type SkillInput struct {
	SkillID     string `json:"skill_id"`
	SkillName   string `json:"skill_name"`
	Subject     string `json:"subject"`
	GradeLevel  string `json:"grade_level"`
	Description string `json:"description"`
}

// SkillRegistryService maintains the skill registry that gates event
// recording: events against unregistered skills are rejected.
type SkillRegistryService interface {
	UpsertSkills(ctx context.Context, inputs []SkillInput) ([]*types.Skill, error)
	ListSkills(ctx context.Context) ([]*types.Skill, error)
	ListEvents(ctx context.Context, userID uuid.UUID, limit int) ([]*types.LearningEvent, error)
}

type skillRegistryService struct {
	log    *logger.Logger
	skills tracking.SkillRepo
	events tracking.LearningEventRepo
}

func NewSkillRegistryService(
	log *logger.Logger,
	skills tracking.SkillRepo,
	events tracking.LearningEventRepo,
) SkillRegistryService {
	return &skillRegistryService{
		log:    log.With("service", "SkillRegistryService"),
		skills: skills,
		events: events,
	}
}

func (s *skillRegistryService) UpsertSkills(ctx context.Context, inputs []SkillInput) ([]*types.Skill, error) {
	if len(inputs) == 0 {
		return nil, apierr.Validation("empty_skill_batch", fmt.Errorf("at least one skill is required"))
	}
	rows := make([]*types.Skill, 0, len(inputs))
	for i, in := range inputs {
		id := strings.TrimSpace(in.SkillID)
		name := strings.TrimSpace(in.SkillName)
		if id == "" || name == "" {
			return nil, apierr.Validation("invalid_skill", fmt.Errorf("skill %d needs skill_id and skill_name", i))
		}
		rows = append(rows, &types.Skill{
			SkillID:     id,
			SkillName:   name,
			Subject:     in.Subject,
			GradeLevel:  in.GradeLevel,
			Description: in.Description,
		})
	}
	return s.skills.Upsert(dbctx.Context{Ctx: ctx}, rows)
}

func (s *skillRegistryService) ListSkills(ctx context.Context) ([]*types.Skill, error) {
	return s.skills.List(dbctx.Context{Ctx: ctx})
}

func (s *skillRegistryService) ListEvents(ctx context.Context, userID uuid.UUID, limit int) ([]*types.LearningEvent, error) {
	if userID == uuid.Nil {
		return nil, apierr.Validation("missing_user_id", fmt.Errorf("user_id is required"))
	}
	return s.events.ListByUser(dbctx.Context{Ctx: ctx}, userID, limit)
}
