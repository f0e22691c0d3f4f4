package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lumenlearn/lumen-backend/internal/data/repos/knowledge"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/pkg/normalization"
	"github.com/lumenlearn/lumen-backend/internal/platform/apierr"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
	"github.com/lumenlearn/lumen-backend/internal/platform/openai"
)

// RefusalAnswer is the fixed response when no grounded evidence exists.
const RefusalAnswer = "I could not find information grounded in the knowledge base to answer this question."

const answerSystemPrompt = `You are a learning assistant. Answer the question using ONLY the numbered sources provided. Every statement must come from the sources. If the sources do not cover part of the question, say so instead of guessing. Do not use outside knowledge.`

type Citation struct {
	SourceID       string  `json:"source_id"`
	ParagraphID    string  `json:"paragraph_id"`
	RelevanceScore float64 `json:"relevance_score"`
}

type AnswerResult struct {
	Answer     string            `json:"answer"`
	Citations  []Citation        `json:"citations"`
	Confidence float64           `json:"confidence"`
	Concepts   []ConceptRelation `json:"concepts,omitempty"`
}

// EvidenceBundle is everything the generation step is allowed to see.
type EvidenceBundle struct {
	Chunks   []ChunkMatch
	Concepts []ConceptRelation
	// LinkedConcepts maps chunk id to the labels of concepts linked to it.
	LinkedConcepts map[uuid.UUID][]string
}

func (b *EvidenceBundle) Empty() bool {
	return b == nil || (len(b.Chunks) == 0 && len(b.Concepts) == 0)
}

type GroundingService interface {
	// Answer embeds the query, assembles the evidence bundle, and either
	// refuses (no evidence) or generates an answer cited exclusively from
	// retrieved chunks.
	Answer(ctx context.Context, query string) (*AnswerResult, error)
}

type groundingService struct {
	log       *logger.Logger
	ai        openai.Client
	retrieval RetrievalService
	nodes     knowledge.ConceptNodeRepo
	links     knowledge.ChunkConceptLinkRepo
	params    RetrievalParams
}

func NewGroundingService(
	log *logger.Logger,
	ai openai.Client,
	retrieval RetrievalService,
	nodes knowledge.ConceptNodeRepo,
	links knowledge.ChunkConceptLinkRepo,
	params RetrievalParams,
) GroundingService {
	return &groundingService{
		log:       log.With("service", "GroundingService"),
		ai:        ai,
		retrieval: retrieval,
		nodes:     nodes,
		links:     links,
		params:    params,
	}
}

func (s *groundingService) Answer(ctx context.Context, query string) (*AnswerResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apierr.Validation("missing_query", fmt.Errorf("query is required"))
	}

	bundle, err := s.assembleEvidence(ctx, query)
	if err != nil {
		return nil, err
	}

	// Hard grounding gate: with no evidence at all, refuse. This is the
	// defined successful outcome, not an error.
	if bundle.Empty() {
		return &AnswerResult{
			Answer:     RefusalAnswer,
			Citations:  []Citation{},
			Confidence: 0,
		}, nil
	}

	// Generation is only ever invoked with at least one grounded chunk.
	// Concept-only evidence yields a deterministic graph summary instead.
	if len(bundle.Chunks) == 0 {
		return &AnswerResult{
			Answer:     conceptOnlyAnswer(query, bundle.Concepts),
			Citations:  []Citation{},
			Confidence: 0.3,
			Concepts:   bundle.Concepts,
		}, nil
	}

	answer, err := s.ai.GenerateText(ctx, answerSystemPrompt, buildPrompt(query, bundle))
	if err != nil {
		return nil, apierr.Upstream("generation_unavailable", fmt.Errorf("answer generation: %w", err))
	}

	// Citations are built from the retrieved chunks themselves, so every
	// source_id provably belongs to this query's evidence bundle.
	citations := make([]Citation, 0, len(bundle.Chunks))
	for _, m := range bundle.Chunks {
		citations = append(citations, Citation{
			SourceID:       m.Chunk.ID.String(),
			ParagraphID:    m.Chunk.SectionID,
			RelevanceScore: m.Similarity,
		})
	}

	return &AnswerResult{
		Answer:     answer,
		Citations:  citations,
		Confidence: bundle.Chunks[0].Similarity,
		Concepts:   bundle.Concepts,
	}, nil
}

func (s *groundingService) assembleEvidence(ctx context.Context, query string) (*EvidenceBundle, error) {
	bundle := &EvidenceBundle{LinkedConcepts: map[uuid.UUID][]string{}}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		vecs, err := s.ai.Embed(gctx, []string{query})
		if err != nil {
			return apierr.Upstream("embedding_unavailable", fmt.Errorf("embed query: %w", err))
		}
		if len(vecs) != 1 {
			return apierr.Upstream("embedding_unavailable", fmt.Errorf("embed query: expected 1 vector, got %d", len(vecs)))
		}
		matches, err := s.retrieval.Search(gctx, SearchInput{Embedding: vecs[0]})
		if err != nil {
			return err
		}
		bundle.Chunks = matches
		return nil
	})

	g.Go(func() error {
		matched, err := s.nodes.MatchLabelsInText(dbctx.Context{Ctx: gctx}, query)
		if err != nil {
			return fmt.Errorf("match concept labels: %w", err)
		}
		seen := map[string]struct{}{}
		for _, node := range matched {
			key := normalization.Label(node.Label)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			rels, err := s.retrieval.ConceptContext(gctx, node.Label)
			if err != nil {
				return err
			}
			bundle.Concepts = append(bundle.Concepts, rels...)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Attach concepts linked to the retrieved chunks.
	if len(bundle.Chunks) > 0 {
		chunkIDs := make([]uuid.UUID, 0, len(bundle.Chunks))
		for _, m := range bundle.Chunks {
			chunkIDs = append(chunkIDs, m.Chunk.ID)
		}
		links, err := s.links.GetByChunkIDs(dbctx.Context{Ctx: ctx}, chunkIDs)
		if err != nil {
			return nil, fmt.Errorf("load chunk concept links: %w", err)
		}
		for _, l := range links {
			bundle.LinkedConcepts[l.ChunkID] = append(bundle.LinkedConcepts[l.ChunkID], l.NodeID)
		}
	}
	return bundle, nil
}

func buildPrompt(query string, bundle *EvidenceBundle) string {
	var b strings.Builder
	b.WriteString("Sources:\n")
	for i, m := range bundle.Chunks {
		fmt.Fprintf(&b, "[%d] (source_id=%s paragraph_id=%s) %s\n", i+1, m.Chunk.ID, m.Chunk.SectionID, m.Chunk.Content)
		if linked := bundle.LinkedConcepts[m.Chunk.ID]; len(linked) > 0 {
			fmt.Fprintf(&b, "    related concepts: %s\n", strings.Join(linked, ", "))
		}
	}
	if len(bundle.Concepts) > 0 {
		b.WriteString("\nConcept graph context:\n")
		for _, c := range bundle.Concepts {
			if c.Direction == "outgoing" {
				fmt.Fprintf(&b, "- %s %s %s\n", c.Concept, c.RelationshipType, c.RelatedConcept)
			} else {
				fmt.Fprintf(&b, "- %s %s %s\n", c.RelatedConcept, c.RelationshipType, c.Concept)
			}
		}
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}

func conceptOnlyAnswer(query string, rels []ConceptRelation) string {
	var b strings.Builder
	b.WriteString("The knowledge base has no passage covering this directly, but the concept graph shows related material: ")
	parts := make([]string, 0, len(rels))
	for _, c := range rels {
		if c.Direction == "outgoing" {
			parts = append(parts, fmt.Sprintf("%s %s %s", c.Concept, c.RelationshipType, c.RelatedConcept))
		} else {
			parts = append(parts, fmt.Sprintf("%s %s %s", c.RelatedConcept, c.RelationshipType, c.Concept))
		}
	}
	b.WriteString(strings.Join(parts, "; "))
	b.WriteString(".")
	return b.String()
}
