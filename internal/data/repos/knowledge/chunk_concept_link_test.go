package knowledge

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/lumenlearn/lumen-backend/internal/data/repos/testutil"
	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
)

func TestChunkConceptLinkRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewChunkConceptLinkRepo(db, testutil.Logger(t))

	chunkA := uuid.New()
	chunkB := uuid.New()
	if _, err := repo.Upsert(dbc, []*types.ChunkConceptLink{
		{ChunkID: chunkA, NodeID: "fractions", RelevanceScore: 0.9},
		{ChunkID: chunkA, NodeID: "decimals", RelevanceScore: 0.4},
		{ChunkID: chunkB, NodeID: "fractions", RelevanceScore: 0.7},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Same pair again with a new score updates in place.
	if _, err := repo.Upsert(dbc, []*types.ChunkConceptLink{
		{ChunkID: chunkA, NodeID: "fractions", RelevanceScore: 0.95},
	}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	byChunk, err := repo.GetByChunkIDs(dbc, []uuid.UUID{chunkA})
	if err != nil || len(byChunk) != 2 {
		t.Fatalf("GetByChunkIDs: err=%v len=%d", err, len(byChunk))
	}

	byNode, err := repo.GetByNodeIDs(dbc, []string{"fractions"})
	if err != nil || len(byNode) != 2 {
		t.Fatalf("GetByNodeIDs: err=%v len=%d", err, len(byNode))
	}
}
