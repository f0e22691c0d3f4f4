package knowledge

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

type ConceptEdgeRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.ConceptEdge) ([]*types.ConceptEdge, error)
	// ListByNode returns every edge touching the node in either direction.
	ListByNode(dbc dbctx.Context, graphName, nodeID string) ([]*types.ConceptEdge, error)
}

type conceptEdgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptEdgeRepo(db *gorm.DB, baseLog *logger.Logger) ConceptEdgeRepo {
	return &conceptEdgeRepo{db: db, log: baseLog.With("repo", "ConceptEdgeRepo")}
}

func (r *conceptEdgeRepo) Upsert(dbc dbctx.Context, rows []*types.ConceptEdge) ([]*types.ConceptEdge, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ConceptEdge{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "graph_name"}, {Name: "edge_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"start_node_id", "end_node_id", "edge_label", "properties", "updated_at"}),
		}).
		Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *conceptEdgeRepo) ListByNode(dbc dbctx.Context, graphName, nodeID string) ([]*types.ConceptEdge, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.ConceptEdge{}
	if graphName == "" || nodeID == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("graph_name = ? AND (start_node_id = ? OR end_node_id = ?)", graphName, nodeID, nodeID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
