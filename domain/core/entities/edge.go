package entities

import "time"

// Edge is a directed link between two article nodes. Edges are immutable
// once created; they only disappear when an endpoint is removed.
type Edge struct {
	ID        string
	SourceID  string
	TargetID  string
	CreatedAt time.Time
}

// EdgeID computes the deterministic composite edge key. Uniqueness of this
// key is the graph's no-multi-edge invariant.
func EdgeID(sourceID, targetID string) string {
	return sourceID + "->" + targetID
}

// NewEdge creates an edge for the ordered (source, target) pair
func NewEdge(sourceID, targetID string) *Edge {
	return &Edge{
		ID:        EdgeID(sourceID, targetID),
		SourceID:  sourceID,
		TargetID:  targetID,
		CreatedAt: time.Now(),
	}
}

// Touches reports whether the edge has the given node as either endpoint
func (e *Edge) Touches(nodeID string) bool {
	return e.SourceID == nodeID || e.TargetID == nodeID
}
