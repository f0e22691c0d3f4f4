package knowledge

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
)

type ConceptNodeRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.ConceptNode) ([]*types.ConceptNode, error)
	GetByLabel(dbc dbctx.Context, label string) ([]*types.ConceptNode, error)
	GetByGraphAndNodeIDs(dbc dbctx.Context, graphName string, nodeIDs []string) ([]*types.ConceptNode, error)
	// MatchLabelsInText returns nodes whose label occurs (case-insensitively)
	// as a substring of the given text. Used for keyword entity matching.
	MatchLabelsInText(dbc dbctx.Context, text string) ([]*types.ConceptNode, error)
}

type conceptNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptNodeRepo(db *gorm.DB, baseLog *logger.Logger) ConceptNodeRepo {
	return &conceptNodeRepo{db: db, log: baseLog.With("repo", "ConceptNodeRepo")}
}

func (r *conceptNodeRepo) Upsert(dbc dbctx.Context, rows []*types.ConceptNode) ([]*types.ConceptNode, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ConceptNode{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "graph_name"}, {Name: "node_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"label", "domain", "properties", "updated_at"}),
		}).
		Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *conceptNodeRepo) GetByLabel(dbc dbctx.Context, label string) ([]*types.ConceptNode, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.ConceptNode{}
	label = strings.TrimSpace(label)
	if label == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("LOWER(label) = LOWER(?)", label).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptNodeRepo) GetByGraphAndNodeIDs(dbc dbctx.Context, graphName string, nodeIDs []string) ([]*types.ConceptNode, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.ConceptNode{}
	if len(nodeIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("graph_name = ? AND node_id IN ?", graphName, nodeIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptNodeRepo) MatchLabelsInText(dbc dbctx.Context, text string) ([]*types.ConceptNode, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.ConceptNode{}
	text = strings.TrimSpace(text)
	if text == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("LOWER(?) LIKE '%' || LOWER(label) || '%'", text).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
