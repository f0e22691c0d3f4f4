package tracking

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

type SkillRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.Skill) ([]*types.Skill, error)
	GetByID(dbc dbctx.Context, skillID string) (*types.Skill, error)
	GetByIDs(dbc dbctx.Context, skillIDs []string) ([]*types.Skill, error)
	List(dbc dbctx.Context) ([]*types.Skill, error)
}

type skillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillRepo(db *gorm.DB, baseLog *logger.Logger) SkillRepo {
	return &skillRepo{db: db, log: baseLog.With("repo", "SkillRepo")}
}

func (r *skillRepo) Upsert(dbc dbctx.Context, rows []*types.Skill) ([]*types.Skill, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Skill{}, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "skill_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"skill_name", "subject", "grade_level", "description", "updated_at"}),
		}).
		Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *skillRepo) GetByID(dbc dbctx.Context, skillID string) (*types.Skill, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	skillID = strings.TrimSpace(skillID)
	if skillID == "" {
		return nil, nil
	}
	var row types.Skill
	if err := t.WithContext(dbc.Ctx).
		Where("skill_id = ?", skillID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *skillRepo) GetByIDs(dbc dbctx.Context, skillIDs []string) ([]*types.Skill, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Skill{}
	if len(skillIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("skill_id IN ?", skillIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *skillRepo) List(dbc dbctx.Context) ([]*types.Skill, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Skill{}
	if err := t.WithContext(dbc.Ctx).
		Order("skill_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
