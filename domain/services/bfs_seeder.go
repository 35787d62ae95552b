package services

import (
	"wikigraph-backend/domain/core/aggregates"
)

// ReplayStep pairs a node with the edges that become drawable once the node
// is emitted: an edge materializes at the step where its second endpoint
// lands, never before.
type ReplayStep struct {
	Node  aggregates.NodeRecord
	Edges []aggregates.EdgeRecord
}

// Replay is a finite, restartable sequence of steps computed once from an
// immutable snapshot. Consumers pull steps at their own pace; pacing and
// animation live outside this package.
type Replay struct {
	steps []ReplayStep
	pos   int
}

// Next returns the next step, or false when the sequence is exhausted
func (r *Replay) Next() (ReplayStep, bool) {
	if r.pos >= len(r.steps) {
		return ReplayStep{}, false
	}
	step := r.steps[r.pos]
	r.pos++
	return step, true
}

// Reset rewinds the sequence to the beginning
func (r *Replay) Reset() {
	r.pos = 0
}

// Len returns the total number of steps
func (r *Replay) Len() int {
	return len(r.steps)
}

// Steps returns the full step sequence
func (r *Replay) Steps() []ReplayStep {
	steps := make([]ReplayStep, len(r.steps))
	copy(steps, r.steps)
	return steps
}

// BFSSeeder computes a deterministic visitation order over a snapshot for
// progressive reconstruction. Roots seed the traversal in stored order;
// traversal follows outgoing edges first, then incoming, so nodes reachable
// only backward still join the sequence. Every node is emitted exactly once.
type BFSSeeder struct{}

// NewBFSSeeder creates a new seeder
func NewBFSSeeder() *BFSSeeder {
	return &BFSSeeder{}
}

// Seed builds the replay sequence for a snapshot
func (s *BFSSeeder) Seed(snap *aggregates.Snapshot) *Replay {
	replay := &Replay{}
	if len(snap.Nodes) == 0 {
		return replay
	}

	nodeByID := make(map[string]aggregates.NodeRecord, len(snap.Nodes))
	incomingCount := make(map[string]int, len(snap.Nodes))
	outgoing := make(map[string][]aggregates.EdgeRecord)
	incoming := make(map[string][]aggregates.EdgeRecord)

	for _, node := range snap.Nodes {
		nodeByID[node.ID] = node
	}
	for _, edge := range snap.Edges {
		outgoing[edge.SourceID] = append(outgoing[edge.SourceID], edge)
		incoming[edge.TargetID] = append(incoming[edge.TargetID], edge)
		incomingCount[edge.TargetID]++
	}

	// Root set in stored order; a rootless (fully cyclic) snapshot falls
	// back to the first-inserted node as the sole seed.
	var seeds []string
	for _, node := range snap.Nodes {
		if incomingCount[node.ID] == 0 {
			seeds = append(seeds, node.ID)
		}
	}
	if len(seeds) == 0 {
		seeds = []string{snap.Nodes[0].ID}
	}

	seen := make(map[string]bool, len(snap.Nodes))     // enqueued at least once
	placed := make(map[string]bool, len(snap.Nodes))   // already emitted in a step
	attached := make(map[string]bool, len(snap.Edges)) // edge bound to a step
	queue := make([]string, 0, len(snap.Nodes))

	enqueue := func(id string) {
		if !seen[id] {
			seen[id] = true
			queue = append(queue, id)
		}
	}

	// ready reports whether an edge can attach to the step emitting current:
	// its other endpoint must already sit in an earlier step. A self-loop
	// attaches at its node's own step.
	ready := func(edge aggregates.EdgeRecord, current string) bool {
		if attached[edge.ID] {
			return false
		}
		other := edge.TargetID
		if other == current {
			other = edge.SourceID
		}
		return other == current || placed[other]
	}

	drain := func() {
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			placed[current] = true

			step := ReplayStep{Node: nodeByID[current]}

			for _, edge := range outgoing[current] {
				if ready(edge, current) {
					attached[edge.ID] = true
					step.Edges = append(step.Edges, edge)
				}
			}
			for _, edge := range incoming[current] {
				if edge.SourceID == edge.TargetID {
					continue // self-loop already handled as outgoing
				}
				if ready(edge, current) {
					attached[edge.ID] = true
					step.Edges = append(step.Edges, edge)
				}
			}

			replay.steps = append(replay.steps, step)

			// Outgoing neighbors first, then the backward-only ones.
			for _, edge := range outgoing[current] {
				enqueue(edge.TargetID)
			}
			for _, edge := range incoming[current] {
				enqueue(edge.SourceID)
			}
		}
	}

	for _, id := range seeds {
		enqueue(id)
	}
	drain()

	// Components untouched by any root (disconnected cycles) still get a
	// total order: sweep the remaining nodes in stored order as fresh seeds.
	for _, node := range snap.Nodes {
		if !seen[node.ID] {
			enqueue(node.ID)
			drain()
		}
	}

	return replay
}
