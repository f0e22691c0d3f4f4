package knowledge

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

type ChunkRepo interface {
	Create(dbc dbctx.Context, rows []*types.Chunk) ([]*types.Chunk, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Chunk, error)
	// ListFiltered returns chunks matching the optional grade/subject filters.
	// Empty filter strings match everything.
	ListFiltered(dbc dbctx.Context, gradeLevel, subject string) ([]*types.Chunk, error)
}

type chunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChunkRepo(db *gorm.DB, baseLog *logger.Logger) ChunkRepo {
	return &chunkRepo{db: db, log: baseLog.With("repo", "ChunkRepo")}
}

func (r *chunkRepo) Create(dbc dbctx.Context, rows []*types.Chunk) ([]*types.Chunk, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Chunk{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *chunkRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Chunk, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Chunk{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chunkRepo) ListFiltered(dbc dbctx.Context, gradeLevel, subject string) ([]*types.Chunk, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.Chunk{})
	if gradeLevel != "" {
		q = q.Where("grade_level = ?", gradeLevel)
	}
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}
	out := []*types.Chunk{}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
