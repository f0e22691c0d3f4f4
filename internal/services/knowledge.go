package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lumenlearn/lumen-backend/internal/data/graph"
	"github.com/lumenlearn/lumen-backend/internal/data/repos/knowledge"
	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/platform/apierr"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
	"github.com/lumenlearn/lumen-backend/internal/platform/neo4jdb"
	"github.com/lumenlearn/lumen-backend/internal/platform/vectorindex"
)

type ChunkInput struct {
	ChapterID  string          `json:"chapter_id"`
	SectionID  string          `json:"section_id"`
	Content    string          `json:"content"`
	Embedding  []float32       `json:"embedding"`
	GradeLevel string          `json:"grade_level"`
	Subject    string          `json:"subject"`
	Metadata   json.RawMessage `json:"metadata"`
}

type ConceptNodeInput struct {
	NodeID     string          `json:"node_id"`
	Label      string          `json:"label"`
	Domain     string          `json:"domain"`
	Properties json.RawMessage `json:"properties"`
}

type ConceptEdgeInput struct {
	EdgeID      string          `json:"edge_id"`
	StartNodeID string          `json:"start_node_id"`
	EndNodeID   string          `json:"end_node_id"`
	EdgeLabel   string          `json:"edge_label"`
	Properties  json.RawMessage `json:"properties"`
}

type ChunkLinkInput struct {
	ChunkID        uuid.UUID `json:"chunk_id"`
	NodeID         string    `json:"node_id"`
	RelevanceScore float64   `json:"relevance_score"`
}

type ConceptGraphInput struct {
	GraphName string             `json:"graph_name"`
	Nodes     []ConceptNodeInput `json:"nodes"`
	Edges     []ConceptEdgeInput `json:"edges"`
	Links     []ChunkLinkInput   `json:"links"`
}

type ConceptGraphResult struct {
	GraphName string `json:"graph_name"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	Links     int    `json:"links"`
}

// KnowledgeService is the write surface consumed by the external ingestion
// pipeline: chunk batches plus concept-graph upserts.
type KnowledgeService interface {
	IngestChunks(ctx context.Context, inputs []ChunkInput) ([]*types.Chunk, error)
	UpsertConceptGraph(ctx context.Context, in ConceptGraphInput) (*ConceptGraphResult, error)
}

type knowledgeService struct {
	db      *gorm.DB
	log     *logger.Logger
	chunks  knowledge.ChunkRepo
	nodes   knowledge.ConceptNodeRepo
	edges   knowledge.ConceptEdgeRepo
	links   knowledge.ChunkConceptLinkRepo
	vectors vectorindex.Store
	neo     *neo4jdb.Client
	params  RetrievalParams
}

func NewKnowledgeService(
	db *gorm.DB,
	log *logger.Logger,
	chunks knowledge.ChunkRepo,
	nodes knowledge.ConceptNodeRepo,
	edges knowledge.ConceptEdgeRepo,
	links knowledge.ChunkConceptLinkRepo,
	vectors vectorindex.Store,
	neo *neo4jdb.Client,
	params RetrievalParams,
) KnowledgeService {
	return &knowledgeService{
		db:      db,
		log:     log.With("service", "KnowledgeService"),
		chunks:  chunks,
		nodes:   nodes,
		edges:   edges,
		links:   links,
		vectors: vectors,
		neo:     neo,
		params:  params,
	}
}

func (s *knowledgeService) IngestChunks(ctx context.Context, inputs []ChunkInput) ([]*types.Chunk, error) {
	if len(inputs) == 0 {
		return []*types.Chunk{}, nil
	}

	rows := make([]*types.Chunk, 0, len(inputs))
	for i, in := range inputs {
		if strings.TrimSpace(in.Content) == "" {
			return nil, apierr.Validation("empty_chunk_content", fmt.Errorf("chunk %d has no content", i))
		}
		if len(in.Embedding) == 0 {
			return nil, apierr.Validation("missing_embedding", fmt.Errorf("chunk %d has no embedding", i))
		}
		if s.params.EmbeddingDim > 0 && len(in.Embedding) != s.params.EmbeddingDim {
			return nil, apierr.Validation("embedding_dimension_mismatch",
				fmt.Errorf("chunk %d embedding dimension mismatch: expected=%d got=%d", i, s.params.EmbeddingDim, len(in.Embedding)))
		}
		raw, err := EncodeEmbedding(in.Embedding)
		if err != nil {
			return nil, fmt.Errorf("encode embedding for chunk %d: %w", i, err)
		}
		row := &types.Chunk{
			ID:         uuid.New(),
			ChapterID:  in.ChapterID,
			SectionID:  in.SectionID,
			Content:    in.Content,
			Embedding:  datatypes.JSON(raw),
			GradeLevel: in.GradeLevel,
			Subject:    in.Subject,
		}
		if len(in.Metadata) > 0 {
			row.Metadata = datatypes.JSON(in.Metadata)
		}
		rows = append(rows, row)
	}

	if _, err := s.chunks.Create(dbctx.Context{Ctx: ctx}, rows); err != nil {
		return nil, fmt.Errorf("insert chunks: %w", err)
	}

	if s.vectors != nil {
		vectors := make([]vectorindex.Vector, 0, len(rows))
		for i, row := range rows {
			vectors = append(vectors, vectorindex.Vector{
				ID:     row.ID.String(),
				Values: inputs[i].Embedding,
				Metadata: map[string]any{
					"grade_level": row.GradeLevel,
					"subject":     row.Subject,
				},
			})
		}
		if err := s.vectors.Upsert(ctx, chunkNamespace, vectors); err != nil {
			return nil, apierr.Upstream("vector_index_unavailable", fmt.Errorf("index chunks: %w", err))
		}
	}
	return rows, nil
}

func (s *knowledgeService) UpsertConceptGraph(ctx context.Context, in ConceptGraphInput) (*ConceptGraphResult, error) {
	in.GraphName = strings.TrimSpace(in.GraphName)
	if in.GraphName == "" {
		return nil, apierr.Validation("missing_graph_name", fmt.Errorf("graph_name is required"))
	}

	nodes := make([]*types.ConceptNode, 0, len(in.Nodes))
	for i, n := range in.Nodes {
		if strings.TrimSpace(n.NodeID) == "" || strings.TrimSpace(n.Label) == "" {
			return nil, apierr.Validation("invalid_concept_node", fmt.Errorf("node %d needs node_id and label", i))
		}
		row := &types.ConceptNode{
			GraphName: in.GraphName,
			NodeID:    n.NodeID,
			Label:     n.Label,
			Domain:    n.Domain,
		}
		if len(n.Properties) > 0 {
			row.Properties = datatypes.JSON(n.Properties)
		}
		nodes = append(nodes, row)
	}

	edges := make([]*types.ConceptEdge, 0, len(in.Edges))
	for i, e := range in.Edges {
		if strings.TrimSpace(e.EdgeID) == "" || e.StartNodeID == "" || e.EndNodeID == "" || e.EdgeLabel == "" {
			return nil, apierr.Validation("invalid_concept_edge",
				fmt.Errorf("edge %d needs edge_id, start_node_id, end_node_id and edge_label", i))
		}
		row := &types.ConceptEdge{
			GraphName:   in.GraphName,
			EdgeID:      e.EdgeID,
			StartNodeID: e.StartNodeID,
			EndNodeID:   e.EndNodeID,
			EdgeLabel:   e.EdgeLabel,
		}
		if len(e.Properties) > 0 {
			row.Properties = datatypes.JSON(e.Properties)
		}
		edges = append(edges, row)
	}

	links := make([]*types.ChunkConceptLink, 0, len(in.Links))
	for i, l := range in.Links {
		if l.ChunkID == uuid.Nil || strings.TrimSpace(l.NodeID) == "" {
			return nil, apierr.Validation("invalid_chunk_link", fmt.Errorf("link %d needs chunk_id and node_id", i))
		}
		links = append(links, &types.ChunkConceptLink{
			ChunkID:        l.ChunkID,
			NodeID:         l.NodeID,
			RelevanceScore: l.RelevanceScore,
		})
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.nodes.Upsert(dbc, nodes); err != nil {
			return fmt.Errorf("upsert concept nodes: %w", err)
		}
		if _, err := s.edges.Upsert(dbc, edges); err != nil {
			return fmt.Errorf("upsert concept edges: %w", err)
		}
		if _, err := s.links.Upsert(dbc, links); err != nil {
			return fmt.Errorf("upsert chunk links: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Relational tables are authoritative; the Neo4j mirror is best effort.
	if err := graph.SyncConceptGraph(ctx, s.neo, s.log, in.GraphName, nodes, edges); err != nil {
		s.log.Warn("Neo4j concept graph sync failed", "graph_name", in.GraphName, "error", err)
	}

	return &ConceptGraphResult{
		GraphName: in.GraphName,
		Nodes:     len(nodes),
		Edges:     len(edges),
		Links:     len(links),
	}, nil
}
