package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/lumenlearn/lumen-backend/internal/data/repos/knowledge"
	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/pkg/normalization"
	"github.com/lumenlearn/lumen-backend/internal/platform/apierr"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
	"github.com/lumenlearn/lumen-backend/internal/platform/vectorindex"
)

const chunkNamespace = "chunks"

// RetrievalParams fix the deployment-wide retrieval contract: the embedding
// dimension and the similarity floor below which chunks never surface.
type RetrievalParams struct {
	EmbeddingDim     int
	DefaultThreshold float64
	DefaultLimit     int
}

func DefaultRetrievalParams() RetrievalParams {
	return RetrievalParams{
		EmbeddingDim:     768,
		DefaultThreshold: 0.7,
		DefaultLimit:     5,
	}
}

type SearchInput struct {
	Embedding  []float32
	GradeLevel string
	Subject    string
	Limit      int
	// Threshold overrides the default similarity floor when non-nil.
	Threshold *float64
}

type ChunkMatch struct {
	Chunk      *types.Chunk `json:"chunk"`
	Similarity float64      `json:"similarity"`
}

type ConceptRelation struct {
	Concept          string `json:"concept"`
	RelatedConcept   string `json:"related_concept"`
	RelationshipType string `json:"relationship_type"`
	Direction        string `json:"direction"`
}

type RetrievalService interface {
	// Search returns the top-K chunks by cosine similarity, never including
	// a result below the threshold. An empty result is a valid outcome.
	Search(ctx context.Context, in SearchInput) ([]ChunkMatch, error)
	// ConceptContext returns every directly connected concept with relation
	// type and direction. One hop only; unknown labels yield the empty set.
	ConceptContext(ctx context.Context, label string) ([]ConceptRelation, error)
}

type retrievalService struct {
	log     *logger.Logger
	chunks  knowledge.ChunkRepo
	nodes   knowledge.ConceptNodeRepo
	edges   knowledge.ConceptEdgeRepo
	vectors vectorindex.Store
	params  RetrievalParams
}

func NewRetrievalService(
	log *logger.Logger,
	chunks knowledge.ChunkRepo,
	nodes knowledge.ConceptNodeRepo,
	edges knowledge.ConceptEdgeRepo,
	vectors vectorindex.Store,
	params RetrievalParams,
) RetrievalService {
	return &retrievalService{
		log:     log.With("service", "RetrievalService"),
		chunks:  chunks,
		nodes:   nodes,
		edges:   edges,
		vectors: vectors,
		params:  params,
	}
}

func (s *retrievalService) Search(ctx context.Context, in SearchInput) ([]ChunkMatch, error) {
	if len(in.Embedding) == 0 {
		return nil, apierr.Validation("missing_embedding", fmt.Errorf("query embedding is required"))
	}
	if s.params.EmbeddingDim > 0 && len(in.Embedding) != s.params.EmbeddingDim {
		return nil, apierr.Validation("embedding_dimension_mismatch",
			fmt.Errorf("embedding dimension mismatch: expected=%d got=%d", s.params.EmbeddingDim, len(in.Embedding)))
	}

	threshold := s.params.DefaultThreshold
	if in.Threshold != nil {
		threshold = *in.Threshold
	}
	limit := in.Limit
	if limit <= 0 {
		limit = s.params.DefaultLimit
	}

	if s.vectors != nil {
		return s.searchIndexed(ctx, in, threshold, limit)
	}
	return s.searchExact(ctx, in, threshold, limit)
}

func (s *retrievalService) searchIndexed(ctx context.Context, in SearchInput, threshold float64, limit int) ([]ChunkMatch, error) {
	filter := map[string]any{}
	if in.GradeLevel != "" {
		filter["grade_level"] = in.GradeLevel
	}
	if in.Subject != "" {
		filter["subject"] = in.Subject
	}

	// Over-fetch so the threshold gate still leaves enough candidates.
	matches, err := s.vectors.QueryMatches(ctx, chunkNamespace, in.Embedding, limit*3, filter)
	if err != nil {
		return nil, apierr.Upstream("vector_index_unavailable", err)
	}

	ids := make([]uuid.UUID, 0, len(matches))
	scores := make(map[uuid.UUID]float64, len(matches))
	for _, m := range matches {
		if m.Score < threshold {
			continue
		}
		id, parseErr := uuid.Parse(m.ID)
		if parseErr != nil {
			s.log.Warn("Skipping vector match with non-uuid id", "id", m.ID)
			continue
		}
		ids = append(ids, id)
		scores[id] = m.Score
	}
	if len(ids) == 0 {
		return []ChunkMatch{}, nil
	}

	rows, err := s.chunks.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		return nil, fmt.Errorf("load chunks for matches: %w", err)
	}

	out := make([]ChunkMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, ChunkMatch{Chunk: row, Similarity: scores[row.ID]})
	}
	sortMatches(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// searchExact is the brute-force fallback used without a configured ANN
// index: exact cosine over the filtered chunk table. Same threshold
// contract, deterministic ordering.
func (s *retrievalService) searchExact(ctx context.Context, in SearchInput, threshold float64, limit int) ([]ChunkMatch, error) {
	rows, err := s.chunks.ListFiltered(dbctx.Context{Ctx: ctx}, in.GradeLevel, in.Subject)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	out := make([]ChunkMatch, 0, len(rows))
	for _, row := range rows {
		emb, decErr := DecodeEmbedding(row.Embedding)
		if decErr != nil || len(emb) != len(in.Embedding) {
			continue
		}
		score := CosineSimilarity(in.Embedding, emb)
		if score < threshold {
			continue
		}
		out = append(out, ChunkMatch{Chunk: row, Similarity: score})
	}
	sortMatches(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortMatches(matches []ChunkMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity == matches[j].Similarity {
			return matches[i].Chunk.ID.String() < matches[j].Chunk.ID.String()
		}
		return matches[i].Similarity > matches[j].Similarity
	})
}

func (s *retrievalService) ConceptContext(ctx context.Context, label string) ([]ConceptRelation, error) {
	label = normalization.Label(label)
	out := []ConceptRelation{}
	if label == "" {
		return out, nil
	}

	dbc := dbctx.Context{Ctx: ctx}
	nodesWithLabel, err := s.nodes.GetByLabel(dbc, label)
	if err != nil {
		return nil, fmt.Errorf("lookup concept label %q: %w", label, err)
	}

	for _, node := range nodesWithLabel {
		edges, err := s.edges.ListByNode(dbc, node.GraphName, node.NodeID)
		if err != nil {
			return nil, fmt.Errorf("list edges for %s/%s: %w", node.GraphName, node.NodeID, err)
		}
		if len(edges) == 0 {
			continue
		}

		neighborIDs := make([]string, 0, len(edges))
		for _, e := range edges {
			if e.StartNodeID == node.NodeID {
				neighborIDs = append(neighborIDs, e.EndNodeID)
			} else {
				neighborIDs = append(neighborIDs, e.StartNodeID)
			}
		}
		neighbors, err := s.nodes.GetByGraphAndNodeIDs(dbc, node.GraphName, neighborIDs)
		if err != nil {
			return nil, fmt.Errorf("load neighbor nodes: %w", err)
		}
		labelByNodeID := make(map[string]string, len(neighbors))
		for _, n := range neighbors {
			labelByNodeID[n.NodeID] = n.Label
		}

		// A node may relate to the same neighbor through several edges;
		// every one is reported, never deduplicated.
		for _, e := range edges {
			rel := ConceptRelation{
				Concept:          node.Label,
				RelationshipType: e.EdgeLabel,
			}
			if e.StartNodeID == node.NodeID {
				rel.Direction = "outgoing"
				rel.RelatedConcept = labelOrID(labelByNodeID, e.EndNodeID)
			} else {
				rel.Direction = "incoming"
				rel.RelatedConcept = labelOrID(labelByNodeID, e.StartNodeID)
			}
			out = append(out, rel)
		}
	}
	return out, nil
}

func labelOrID(labels map[string]string, nodeID string) string {
	if l, ok := labels[nodeID]; ok && l != "" {
		return l
	}
	return nodeID
}

// DecodeEmbedding parses the jsonb float array stored on a chunk row.
func DecodeEmbedding(raw []byte) ([]float32, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}
	var vals []float32
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil, err
	}
	return vals, nil
}

func EncodeEmbedding(vals []float32) ([]byte, error) {
	return json.Marshal(vals)
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
