package tracking

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

type StudentSkillStateRepo interface {
	// GetForUpdate loads the (user, skill) state row under a row-level lock.
	// Returns nil when no row exists yet. Must be called inside a transaction.
	GetForUpdate(dbc dbctx.Context, userID uuid.UUID, skillID string) (*types.StudentSkillState, error)
	Create(dbc dbctx.Context, row *types.StudentSkillState) error
	Save(dbc dbctx.Context, row *types.StudentSkillState) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.StudentSkillState, error)
	ListAll(dbc dbctx.Context, minMastery *float64) ([]*types.StudentSkillState, error)
}

type studentSkillStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentSkillStateRepo(db *gorm.DB, baseLog *logger.Logger) StudentSkillStateRepo {
	return &studentSkillStateRepo{db: db, log: baseLog.With("repo", "StudentSkillStateRepo")}
}

func (r *studentSkillStateRepo) GetForUpdate(dbc dbctx.Context, userID uuid.UUID, skillID string) (*types.StudentSkillState, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.StudentSkillState
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND skill_id = ?", userID, skillID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *studentSkillStateRepo) Create(dbc dbctx.Context, row *types.StudentSkillState) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.UserID == uuid.Nil || row.SkillID == "" {
		return nil
	}
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *studentSkillStateRepo) Save(dbc dbctx.Context, row *types.StudentSkillState) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	row.UpdatedAt = time.Now().UTC()
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *studentSkillStateRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.StudentSkillState, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.StudentSkillState{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("skill_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *studentSkillStateRepo) ListAll(dbc dbctx.Context, minMastery *float64) ([]*types.StudentSkillState, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.StudentSkillState{})
	if minMastery != nil {
		q = q.Where("probability_mastery >= ?", *minMastery)
	}
	out := []*types.StudentSkillState{}
	if err := q.Order("user_id ASC, skill_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
