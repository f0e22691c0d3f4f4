package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/pkg/normalization"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
	"github.com/lumenlearn/lumen-backend/internal/platform/vectorindex"
)

func testLogger(tb interface{ Fatalf(string, ...any) }) *logger.Logger {
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("logger.New: %v", err)
	}
	return log
}

// In-memory repo fakes backed by plain slices. Unimplemented paths return
// empty results so tests only wire what they assert on.

type fakeChunkRepo struct {
	rows []*types.Chunk
}

func (f *fakeChunkRepo) Create(dbc dbctx.Context, rows []*types.Chunk) ([]*types.Chunk, error) {
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeChunkRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Chunk, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []*types.Chunk{}
	for _, row := range f.rows {
		if want[row.ID] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeChunkRepo) ListFiltered(dbc dbctx.Context, gradeLevel, subject string) ([]*types.Chunk, error) {
	out := []*types.Chunk{}
	for _, row := range f.rows {
		if gradeLevel != "" && row.GradeLevel != gradeLevel {
			continue
		}
		if subject != "" && row.Subject != subject {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

type fakeConceptNodeRepo struct {
	rows []*types.ConceptNode
}

func (f *fakeConceptNodeRepo) Upsert(dbc dbctx.Context, rows []*types.ConceptNode) ([]*types.ConceptNode, error) {
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeConceptNodeRepo) GetByLabel(dbc dbctx.Context, label string) ([]*types.ConceptNode, error) {
	out := []*types.ConceptNode{}
	for _, row := range f.rows {
		if normalization.Label(row.Label) == normalization.Label(label) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeConceptNodeRepo) GetByGraphAndNodeIDs(dbc dbctx.Context, graphName string, nodeIDs []string) ([]*types.ConceptNode, error) {
	want := map[string]bool{}
	for _, id := range nodeIDs {
		want[id] = true
	}
	out := []*types.ConceptNode{}
	for _, row := range f.rows {
		if row.GraphName == graphName && want[row.NodeID] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeConceptNodeRepo) MatchLabelsInText(dbc dbctx.Context, text string) ([]*types.ConceptNode, error) {
	lower := strings.ToLower(text)
	out := []*types.ConceptNode{}
	for _, row := range f.rows {
		if strings.Contains(lower, strings.ToLower(row.Label)) {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeConceptEdgeRepo struct {
	rows []*types.ConceptEdge
}

func (f *fakeConceptEdgeRepo) Upsert(dbc dbctx.Context, rows []*types.ConceptEdge) ([]*types.ConceptEdge, error) {
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeConceptEdgeRepo) ListByNode(dbc dbctx.Context, graphName, nodeID string) ([]*types.ConceptEdge, error) {
	out := []*types.ConceptEdge{}
	for _, row := range f.rows {
		if row.GraphName == graphName && (row.StartNodeID == nodeID || row.EndNodeID == nodeID) {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeLinkRepo struct {
	rows []*types.ChunkConceptLink
}

func (f *fakeLinkRepo) Upsert(dbc dbctx.Context, rows []*types.ChunkConceptLink) ([]*types.ChunkConceptLink, error) {
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeLinkRepo) GetByChunkIDs(dbc dbctx.Context, chunkIDs []uuid.UUID) ([]*types.ChunkConceptLink, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range chunkIDs {
		want[id] = true
	}
	out := []*types.ChunkConceptLink{}
	for _, row := range f.rows {
		if want[row.ChunkID] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) GetByNodeIDs(dbc dbctx.Context, nodeIDs []string) ([]*types.ChunkConceptLink, error) {
	want := map[string]bool{}
	for _, id := range nodeIDs {
		want[id] = true
	}
	out := []*types.ChunkConceptLink{}
	for _, row := range f.rows {
		if want[row.NodeID] {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeSkillRepo struct {
	rows []*types.Skill
}

func (f *fakeSkillRepo) Upsert(dbc dbctx.Context, rows []*types.Skill) ([]*types.Skill, error) {
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeSkillRepo) GetByID(dbc dbctx.Context, skillID string) (*types.Skill, error) {
	for _, row := range f.rows {
		if row.SkillID == skillID {
			return row, nil
		}
	}
	return nil, nil
}

func (f *fakeSkillRepo) GetByIDs(dbc dbctx.Context, skillIDs []string) ([]*types.Skill, error) {
	want := map[string]bool{}
	for _, id := range skillIDs {
		want[id] = true
	}
	out := []*types.Skill{}
	for _, row := range f.rows {
		if want[row.SkillID] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeSkillRepo) List(dbc dbctx.Context) ([]*types.Skill, error) {
	return f.rows, nil
}

type fakeStateRepo struct {
	rows []*types.StudentSkillState
}

func (f *fakeStateRepo) GetForUpdate(dbc dbctx.Context, userID uuid.UUID, skillID string) (*types.StudentSkillState, error) {
	for _, row := range f.rows {
		if row.UserID == userID && row.SkillID == skillID {
			return row, nil
		}
	}
	return nil, nil
}

func (f *fakeStateRepo) Create(dbc dbctx.Context, row *types.StudentSkillState) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeStateRepo) Save(dbc dbctx.Context, row *types.StudentSkillState) error {
	return nil
}

func (f *fakeStateRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.StudentSkillState, error) {
	out := []*types.StudentSkillState{}
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStateRepo) ListAll(dbc dbctx.Context, minMastery *float64) ([]*types.StudentSkillState, error) {
	out := []*types.StudentSkillState{}
	for _, row := range f.rows {
		if minMastery != nil && row.ProbabilityMastery < *minMastery {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

type fakeVectorStore struct {
	upserted []vectorindex.Vector
	matches  []vectorindex.Match
	queryErr error
}

func (f *fakeVectorStore) Upsert(ctx context.Context, namespace string, vectors []vectorindex.Vector) error {
	f.upserted = append(f.upserted, vectors...)
	return nil
}

func (f *fakeVectorStore) QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]vectorindex.Match, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches, nil
}

type fakeAI struct {
	embedding   []float32
	embedErr    error
	answer      string
	generateErr error

	generateCalls int
	lastUser      string
}

func (f *fakeAI) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = f.embedding
	}
	return out, nil
}

func (f *fakeAI) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.generateCalls++
	f.lastUser = user
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.answer, nil
}
