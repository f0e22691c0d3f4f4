package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/platform/logger"
	"github.com/lumenlearn/lumen-backend/internal/platform/neo4jdb"
)

// SyncConceptGraph mirrors concept nodes and edges into Neo4j for
// graph-native consumers. The relational tables stay authoritative; this is
// a best-effort projection and a no-op without a configured client.
func SyncConceptGraph(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, graphName string, concepts []*types.ConceptNode, edges []*types.ConceptEdge) error {
	if client == nil || client.Driver == nil {
		return nil
	}
	if graphName == "" {
		return fmt.Errorf("neo4j concept graph sync: missing graph name")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	nodes := make([]map[string]any, 0, len(concepts))
	for _, c := range concepts {
		if c == nil || c.NodeID == "" {
			continue
		}
		nodes = append(nodes, map[string]any{
			"graph_name": graphName,
			"node_id":    c.NodeID,
			"label":      c.Label,
			"domain":     c.Domain,
			"properties_json": func() string {
				if len(c.Properties) == 0 {
					return ""
				}
				return string(c.Properties)
			}(),
			"synced_at": now,
		})
	}

	rels := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		if e == nil || e.StartNodeID == "" || e.EndNodeID == "" || e.EdgeLabel == "" {
			continue
		}
		rels = append(rels, map[string]any{
			"graph_name": graphName,
			"edge_id":    e.EdgeID,
			"from_id":    e.StartNodeID,
			"to_id":      e.EndNodeID,
			"edge_label": e.EdgeLabel,
			"synced_at":  now,
		})
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	// Schema helpers (best-effort; may fail for restricted users).
	if res, err := session.Run(ctx, `CREATE CONSTRAINT concept_graph_node_unique IF NOT EXISTS FOR (c:Concept) REQUIRE (c.graph_name, c.node_id) IS UNIQUE`, nil); err != nil {
		if log != nil {
			log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if len(nodes) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $nodes AS n
MERGE (c:Concept {graph_name: n.graph_name, node_id: n.node_id})
SET c.label = n.label,
    c.domain = n.domain,
    c.properties_json = n.properties_json,
    c.synced_at = n.synced_at
`, map[string]any{"nodes": nodes})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		if len(rels) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $rels AS r
MATCH (a:Concept {graph_name: r.graph_name, node_id: r.from_id})
MATCH (b:Concept {graph_name: r.graph_name, node_id: r.to_id})
MERGE (a)-[rel:RELATES_TO {edge_id: r.edge_id}]->(b)
SET rel.edge_label = r.edge_label,
    rel.synced_at = r.synced_at
`, map[string]any{"rels": rels})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j concept graph sync: %w", err)
	}

	if log != nil {
		log.Debug("Synced concept graph to neo4j", "graph_name", graphName, "nodes", len(nodes), "edges", len(rels))
	}
	return nil
}
