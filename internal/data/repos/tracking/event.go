package tracking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

// LearningEventRepo is append-only: the event ledger is never updated or
// deleted after insert.
type LearningEventRepo interface {
	Create(dbc dbctx.Context, events []*types.LearningEvent) ([]*types.LearningEvent, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.LearningEvent, error)
	ListByUserAndSkill(dbc dbctx.Context, userID uuid.UUID, skillID string) ([]*types.LearningEvent, error)
}

type learningEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningEventRepo(db *gorm.DB, baseLog *logger.Logger) LearningEventRepo {
	return &learningEventRepo{db: db, log: baseLog.With("repo", "LearningEventRepo")}
}

func (r *learningEventRepo) Create(dbc dbctx.Context, events []*types.LearningEvent) ([]*types.LearningEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(events) == 0 {
		return []*types.LearningEvent{}, nil
	}
	now := time.Now().UTC()
	for _, ev := range events {
		if ev.ID == uuid.Nil {
			ev.ID = uuid.New()
		}
		if ev.Timestamp.IsZero() {
			ev.Timestamp = now
		}
		if ev.EventType == "" {
			ev.EventType = types.EventTypeStudentAction
		}
	}
	if err := t.WithContext(dbc.Ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *learningEventRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.LearningEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.LearningEvent{}
	if userID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 {
		limit = 500
	}
	if limit > 1000 {
		limit = 1000
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("timestamp ASC, id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningEventRepo) ListByUserAndSkill(dbc dbctx.Context, userID uuid.UUID, skillID string) ([]*types.LearningEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.LearningEvent{}
	if userID == uuid.Nil || skillID == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND skill_id = ?", userID, skillID).
		Order("timestamp ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
