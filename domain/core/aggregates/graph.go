package aggregates

import (
	"sync"
	"time"

	"wikigraph-backend/domain/config"
	"wikigraph-backend/domain/core/entities"
	"wikigraph-backend/domain/core/valueobjects"
	pkgerrors "wikigraph-backend/pkg/errors"
)

// Graph is the aggregate root owning the exploration graph. All node and
// edge mutation goes through it so the identity and no-multi-edge invariants
// hold no matter how fetch completions interleave.
//
// Nodes are keyed by canonical article title, edges by the deterministic
// "source->target" composite key. Incoming/outgoing indices are maintained on
// every mutation so degree lookups never scan the full edge set.
type Graph struct {
	mu sync.RWMutex

	nodes     map[string]*entities.Node
	nodeOrder []string

	edges     map[string]*entities.Edge
	edgeOrder []string

	outgoing map[string][]*entities.Edge
	incoming map[string][]*entities.Edge

	cfg *config.DomainConfig

	createdAt time.Time
	updatedAt time.Time
	version   int
}

// CascadeResult reports everything a cascade removal deleted
type CascadeResult struct {
	RemovedNodes []*entities.Node
	RemovedEdges []*entities.Edge
}

// NewGraph creates an empty graph
func NewGraph(cfg *config.DomainConfig) *Graph {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	now := time.Now()
	return &Graph{
		nodes:    make(map[string]*entities.Node),
		edges:    make(map[string]*entities.Edge),
		outgoing: make(map[string][]*entities.Edge),
		incoming: make(map[string][]*entities.Edge),
		cfg:      cfg,

		createdAt: now,
		updatedAt: now,
		version:   1,
	}
}

// UpsertNode creates a node for the canonical title in data, or merges data
// into the existing node: content, document, and links follow last-write-wins
// and the weight is recomputed. Returns the resulting node and whether it was
// newly created.
func (g *Graph) UpsertNode(data entities.ArticleData) (*entities.Node, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := valueobjects.NormalizeTitle(data.CanonicalTitle)
	if existing, ok := g.nodes[id]; ok {
		existing.ApplyResolved(data)
		g.touch()
		return existing, false, nil
	}

	if len(g.nodes) >= g.cfg.MaxNodesPerGraph {
		return nil, false, pkgerrors.NewConflictError("maximum nodes reached")
	}

	node, err := entities.NewNode(data)
	if err != nil {
		return nil, false, err
	}

	g.nodes[node.ID()] = node
	g.nodeOrder = append(g.nodeOrder, node.ID())
	g.touch()

	return node, true, nil
}

// AddEdgeIfAbsent inserts the directed edge (sourceID, targetID) unless it
// already exists, in which case it returns (nil, nil) as an idempotent no-op.
// Both endpoints must already be nodes; a missing endpoint is a
// DanglingReferenceError, which indicates a caller ordering bug.
func (g *Graph) AddEdgeIfAbsent(sourceID, targetID string) (*entities.Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sourceID = valueobjects.NormalizeTitle(sourceID)
	targetID = valueobjects.NormalizeTitle(targetID)

	edgeID := entities.EdgeID(sourceID, targetID)
	if _, exists := g.edges[edgeID]; exists {
		return nil, nil
	}

	if _, ok := g.nodes[sourceID]; !ok {
		return nil, pkgerrors.NewDanglingReferenceError(sourceID, targetID)
	}
	if _, ok := g.nodes[targetID]; !ok {
		return nil, pkgerrors.NewDanglingReferenceError(sourceID, targetID)
	}

	if len(g.edges) >= g.cfg.MaxEdgesPerGraph {
		return nil, pkgerrors.NewConflictError("maximum edges reached")
	}

	edge := entities.NewEdge(sourceID, targetID)
	g.edges[edge.ID] = edge
	g.edgeOrder = append(g.edgeOrder, edge.ID)
	g.outgoing[sourceID] = append(g.outgoing[sourceID], edge)
	g.incoming[targetID] = append(g.incoming[targetID], edge)
	g.touch()

	return edge, nil
}

// MarkNodeExpanded raises the node's expanded flag under the graph lock and
// reports whether the node exists. Entity state is only ever written while
// holding the aggregate's write lock; callers must not mutate nodes directly.
func (g *Graph) MarkNodeExpanded(nodeID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.nodes[valueobjects.NormalizeTitle(nodeID)]
	if !ok {
		return false
	}
	if !node.Expanded() {
		node.MarkExpanded()
		g.touch()
	}
	return true
}

// RemoveNodeCascade removes the node, every edge touching it, and then every
// node left unreachable by a forward-link path from the surviving root set,
// repeated to a fixed point. Removing an already-absent node is a no-op;
// a prior cascade pass may have taken it first.
func (g *Graph) RemoveNodeCascade(nodeID string) *CascadeResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	result := &CascadeResult{}

	nodeID = valueobjects.NormalizeTitle(nodeID)
	if _, ok := g.nodes[nodeID]; !ok {
		return result
	}

	// Roots are fixed before the mutation: a node orphaned by this removal
	// must not promote itself to root and thereby survive.
	roots := make(map[string]bool)
	for _, id := range g.rootIDsLocked() {
		if id != nodeID {
			roots[id] = true
		}
	}

	g.removeNodeLocked(nodeID, result)

	for {
		reachable := g.reachableFromLocked(roots)

		var orphans []string
		for _, id := range g.nodeOrder {
			if !reachable[id] {
				orphans = append(orphans, id)
			}
		}
		if len(orphans) == 0 {
			break
		}
		for _, id := range orphans {
			g.removeNodeLocked(id, result)
		}
	}

	g.touch()
	return result
}

// removeNodeLocked removes a single node and all edges touching it,
// appending everything removed to result. Caller holds the write lock.
func (g *Graph) removeNodeLocked(nodeID string, result *CascadeResult) {
	node, ok := g.nodes[nodeID]
	if !ok {
		return
	}

	touching := make([]*entities.Edge, 0, len(g.outgoing[nodeID])+len(g.incoming[nodeID]))
	touching = append(touching, g.outgoing[nodeID]...)
	for _, edge := range g.incoming[nodeID] {
		// A self-loop sits in both indices; only collect it once.
		if edge.SourceID != edge.TargetID {
			touching = append(touching, edge)
		}
	}

	for _, edge := range touching {
		g.removeEdgeLocked(edge)
		result.RemovedEdges = append(result.RemovedEdges, edge)
	}

	delete(g.nodes, nodeID)
	delete(g.outgoing, nodeID)
	delete(g.incoming, nodeID)
	g.nodeOrder = removeString(g.nodeOrder, nodeID)
	result.RemovedNodes = append(result.RemovedNodes, node)
}

func (g *Graph) removeEdgeLocked(edge *entities.Edge) {
	delete(g.edges, edge.ID)
	g.edgeOrder = removeString(g.edgeOrder, edge.ID)
	g.outgoing[edge.SourceID] = removeEdge(g.outgoing[edge.SourceID], edge.ID)
	g.incoming[edge.TargetID] = removeEdge(g.incoming[edge.TargetID], edge.ID)
}

// reachableFromLocked runs a forward BFS over outgoing edges from the given
// seed set. Caller holds at least the read lock.
func (g *Graph) reachableFromLocked(seeds map[string]bool) map[string]bool {
	reachable := make(map[string]bool, len(g.nodes))
	queue := make([]string, 0, len(seeds))

	for _, id := range g.nodeOrder {
		if seeds[id] {
			reachable[id] = true
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range g.outgoing[current] {
			if !reachable[edge.TargetID] {
				reachable[edge.TargetID] = true
				queue = append(queue, edge.TargetID)
			}
		}
	}

	return reachable
}

// FindOutgoingEdges returns the edges leaving the node, in insertion order
func (g *Graph) FindOutgoingEdges(nodeID string) []*entities.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return copyEdges(g.outgoing[valueobjects.NormalizeTitle(nodeID)])
}

// FindIncomingEdges returns the edges entering the node, in insertion order
func (g *Graph) FindIncomingEdges(nodeID string) []*entities.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return copyEdges(g.incoming[valueobjects.NormalizeTitle(nodeID)])
}

// RootNodes returns the nodes with zero incoming edges, in insertion order.
// Recomputed from the live edge set on every call; never cached.
func (g *Graph) RootNodes() []*entities.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	roots := make([]*entities.Node, 0)
	for _, id := range g.rootIDsLocked() {
		roots = append(roots, g.nodes[id])
	}
	return roots
}

func (g *Graph) rootIDsLocked() []string {
	ids := make([]string, 0)
	for _, id := range g.nodeOrder {
		if len(g.incoming[id]) == 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// GetNode retrieves a node by canonical title
func (g *Graph) GetNode(nodeID string) (*entities.Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[valueobjects.NormalizeTitle(nodeID)]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return node, nil
}

// HasNode checks node existence without an error return
func (g *Graph) HasNode(nodeID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.nodes[valueobjects.NormalizeTitle(nodeID)]
	return ok
}

// HasEdge checks edge existence for the ordered (source, target) pair
func (g *Graph) HasEdge(sourceID, targetID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id := entities.EdgeID(valueobjects.NormalizeTitle(sourceID), valueobjects.NormalizeTitle(targetID))
	_, ok := g.edges[id]
	return ok
}

// Nodes returns all nodes in insertion order
func (g *Graph) Nodes() []*entities.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]*entities.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns all edges in insertion order
func (g *Graph) Edges() []*entities.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := make([]*entities.Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		edges = append(edges, g.edges[id])
	}
	return edges
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Version returns the graph's mutation count
func (g *Graph) Version() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.version
}

// Clear drops every node and edge, leaving an empty graph
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make(map[string]*entities.Node)
	g.nodeOrder = nil
	g.edges = make(map[string]*entities.Edge)
	g.edgeOrder = nil
	g.outgoing = make(map[string][]*entities.Edge)
	g.incoming = make(map[string][]*entities.Edge)
	g.touch()
}

// Validate checks the graph's structural invariants
func (g *Graph) Validate() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, edge := range g.edges {
		if _, ok := g.nodes[edge.SourceID]; !ok {
			return pkgerrors.NewDanglingReferenceError(edge.SourceID, edge.TargetID)
		}
		if _, ok := g.nodes[edge.TargetID]; !ok {
			return pkgerrors.NewDanglingReferenceError(edge.SourceID, edge.TargetID)
		}
	}

	if len(g.nodeOrder) != len(g.nodes) {
		return pkgerrors.NewInternalError("node order out of sync with node set", nil)
	}
	if len(g.edgeOrder) != len(g.edges) {
		return pkgerrors.NewInternalError("edge order out of sync with edge set", nil)
	}

	return nil
}

func (g *Graph) touch() {
	g.updatedAt = time.Now()
	g.version++
}

func removeString(list []string, value string) []string {
	for i, v := range list {
		if v == value {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func removeEdge(list []*entities.Edge, edgeID string) []*entities.Edge {
	for i, e := range list {
		if e.ID == edgeID {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func copyEdges(list []*entities.Edge) []*entities.Edge {
	edges := make([]*entities.Edge, len(list))
	copy(edges, list)
	return edges
}
