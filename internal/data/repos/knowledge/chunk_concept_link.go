package knowledge

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

type ChunkConceptLinkRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.ChunkConceptLink) ([]*types.ChunkConceptLink, error)
	GetByChunkIDs(dbc dbctx.Context, chunkIDs []uuid.UUID) ([]*types.ChunkConceptLink, error)
	GetByNodeIDs(dbc dbctx.Context, nodeIDs []string) ([]*types.ChunkConceptLink, error)
}

type chunkConceptLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChunkConceptLinkRepo(db *gorm.DB, baseLog *logger.Logger) ChunkConceptLinkRepo {
	return &chunkConceptLinkRepo{db: db, log: baseLog.With("repo", "ChunkConceptLinkRepo")}
}

func (r *chunkConceptLinkRepo) Upsert(dbc dbctx.Context, rows []*types.ChunkConceptLink) ([]*types.ChunkConceptLink, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ChunkConceptLink{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chunk_id"}, {Name: "node_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"relevance_score"}),
		}).
		Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *chunkConceptLinkRepo) GetByChunkIDs(dbc dbctx.Context, chunkIDs []uuid.UUID) ([]*types.ChunkConceptLink, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.ChunkConceptLink{}
	if len(chunkIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("chunk_id IN ?", chunkIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chunkConceptLinkRepo) GetByNodeIDs(dbc dbctx.Context, nodeIDs []string) ([]*types.ChunkConceptLink, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.ChunkConceptLink{}
	if len(nodeIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("node_id IN ?", nodeIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
