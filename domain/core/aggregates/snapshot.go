package aggregates

import (
	"time"

	"wikigraph-backend/domain/config"
	"wikigraph-backend/domain/core/entities"
	pkgerrors "wikigraph-backend/pkg/errors"
)

// NodeRecord is the serialized form of a node inside a snapshot
type NodeRecord struct {
	ID                 string   `json:"id" dynamodbav:"ID"`
	Content            string   `json:"content" dynamodbav:"Content"`
	FullDocument       string   `json:"fullDocument" dynamodbav:"FullDocument"`
	SourceURL          string   `json:"sourceUrl" dynamodbav:"SourceURL"`
	OutgoingLinkTitles []string `json:"outgoingLinkTitles" dynamodbav:"OutgoingLinkTitles"`
	Expanded           bool     `json:"expanded" dynamodbav:"Expanded"`
	Weight             int      `json:"weight" dynamodbav:"Weight"`
	ColorSeed          uint32   `json:"colorSeed" dynamodbav:"ColorSeed"`
	CreatedAt          string   `json:"createdAt" dynamodbav:"CreatedAt"`
	UpdatedAt          string   `json:"updatedAt" dynamodbav:"UpdatedAt"`
}

// EdgeRecord is the serialized form of an edge inside a snapshot
type EdgeRecord struct {
	ID        string `json:"id" dynamodbav:"ID"`
	SourceID  string `json:"sourceId" dynamodbav:"SourceID"`
	TargetID  string `json:"targetId" dynamodbav:"TargetID"`
	CreatedAt string `json:"createdAt" dynamodbav:"CreatedAt"`
}

// Snapshot is an immutable, fully-materialized copy of a graph's nodes and
// edges, suitable for persistence and forking. Once written only the view
// count and expiry metadata move, and both only ever increase.
type Snapshot struct {
	ID          string       `json:"id" dynamodbav:"SnapshotID"`
	Title       string       `json:"title" dynamodbav:"Title"`
	CreatorName string       `json:"creatorName,omitempty" dynamodbav:"CreatorName"`
	Description string       `json:"description,omitempty" dynamodbav:"Description"`
	Nodes       []NodeRecord `json:"nodes" dynamodbav:"Nodes"`
	Edges       []EdgeRecord `json:"edges" dynamodbav:"Edges"`
	CreatedAt   time.Time    `json:"createdAt" dynamodbav:"CreatedAt"`
	ExpiresAt   time.Time    `json:"expiresAt" dynamodbav:"ExpiresAt"`
	ViewCount   int64        `json:"viewCount" dynamodbav:"ViewCount"`
}

// Snapshot materializes the graph's current state. Nodes and edges appear in
// insertion order so replaying a snapshot is deterministic.
func (g *Graph) Snapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := &Snapshot{
		Nodes:     make([]NodeRecord, 0, len(g.nodeOrder)),
		Edges:     make([]EdgeRecord, 0, len(g.edgeOrder)),
		CreatedAt: time.Now(),
	}

	for _, id := range g.nodeOrder {
		node := g.nodes[id]
		snap.Nodes = append(snap.Nodes, NodeRecord{
			ID:                 node.ID(),
			Content:            node.Content(),
			FullDocument:       node.FullDocument(),
			SourceURL:          node.SourceURL(),
			OutgoingLinkTitles: node.OutgoingLinkTitles(),
			Expanded:           node.Expanded(),
			Weight:             node.Weight(),
			ColorSeed:          node.ColorSeed(),
			CreatedAt:          node.CreatedAt().Format(time.RFC3339),
			UpdatedAt:          node.UpdatedAt().Format(time.RFC3339),
		})
	}

	for _, id := range g.edgeOrder {
		edge := g.edges[id]
		snap.Edges = append(snap.Edges, EdgeRecord{
			ID:        edge.ID,
			SourceID:  edge.SourceID,
			TargetID:  edge.TargetID,
			CreatedAt: edge.CreatedAt.Format(time.RFC3339),
		})
	}

	return snap
}

// NewGraphFromSnapshot hydrates a graph wholesale from a snapshot. The
// snapshot must already satisfy the graph invariants; a dangling edge or
// duplicate key aborts the hydration.
func NewGraphFromSnapshot(snap *Snapshot, cfg *config.DomainConfig) (*Graph, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	g := NewGraph(cfg)

	for _, record := range snap.Nodes {
		node, err := reconstructNodeRecord(record)
		if err != nil {
			return nil, err
		}
		g.nodes[node.ID()] = node
		g.nodeOrder = append(g.nodeOrder, node.ID())
	}

	for _, record := range snap.Edges {
		if _, err := g.AddEdgeIfAbsent(record.SourceID, record.TargetID); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Validate checks the snapshot against the graph invariants: unique node
// ids, unique ordered edge pairs, and no edge referencing a missing node.
func (s *Snapshot) Validate() error {
	nodeIDs := make(map[string]bool, len(s.Nodes))
	for _, node := range s.Nodes {
		if node.ID == "" {
			return pkgerrors.NewValidationError("snapshot contains a node without an id")
		}
		if nodeIDs[node.ID] {
			return pkgerrors.NewConflictError("duplicate node id in snapshot: " + node.ID)
		}
		nodeIDs[node.ID] = true
	}

	edgeIDs := make(map[string]bool, len(s.Edges))
	for _, edge := range s.Edges {
		id := entities.EdgeID(edge.SourceID, edge.TargetID)
		if edgeIDs[id] {
			return pkgerrors.NewConflictError("duplicate edge in snapshot: " + id)
		}
		edgeIDs[id] = true

		if !nodeIDs[edge.SourceID] || !nodeIDs[edge.TargetID] {
			return pkgerrors.NewDanglingReferenceError(edge.SourceID, edge.TargetID)
		}
	}

	return nil
}

// Fork clones the snapshot's node and edge arrays verbatim under a blank
// identity; the persistence layer assigns the new id at save time. The source
// is already consistent, so no resolution or dedup re-run happens.
func (s *Snapshot) Fork(title, creatorName, description string) *Snapshot {
	fork := &Snapshot{
		Title:       title,
		CreatorName: creatorName,
		Description: description,
		Nodes:       make([]NodeRecord, len(s.Nodes)),
		Edges:       make([]EdgeRecord, len(s.Edges)),
		CreatedAt:   time.Now(),
	}
	copy(fork.Nodes, s.Nodes)
	copy(fork.Edges, s.Edges)

	for i := range fork.Nodes {
		links := make([]string, len(s.Nodes[i].OutgoingLinkTitles))
		copy(links, s.Nodes[i].OutgoingLinkTitles)
		fork.Nodes[i].OutgoingLinkTitles = links
	}

	return fork
}

func reconstructNodeRecord(record NodeRecord) (*entities.Node, error) {
	createdAt, err := time.Parse(time.RFC3339, record.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}
	updatedAt, err := time.Parse(time.RFC3339, record.UpdatedAt)
	if err != nil {
		updatedAt = createdAt
	}

	return entities.ReconstructNode(
		record.ID,
		record.Content,
		record.FullDocument,
		record.SourceURL,
		record.OutgoingLinkTitles,
		record.Expanded,
		createdAt,
		updatedAt,
	)
}
