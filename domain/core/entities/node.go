package entities

import (
	"time"

	"wikigraph-backend/domain/core/valueobjects"
	pkgerrors "wikigraph-backend/pkg/errors"
)

// ArticleData carries resolved article content into the graph.
// CanonicalTitle is the title as returned by the data source after redirect
// resolution; it is the node's identity and the only valid dedup key.
type ArticleData struct {
	CanonicalTitle     string
	Content            string
	FullDocument       string
	SourceURL          string
	OutgoingLinkTitles []string
}

// Node is an article vertex in the exploration graph.
// Identity is the canonical article title; content fields follow
// last-write-wins on refetch, while the expanded flag only ever rises.
type Node struct {
	id           string
	title        string
	content      string
	fullDocument string
	sourceURL    string

	// outgoingLinkTitles holds link targets normalized (underscores to
	// spaces) but not canonicalized; linkSet mirrors it for O(1) membership.
	outgoingLinkTitles []string
	linkSet            map[string]bool

	expanded  bool
	weight    int
	colorSeed uint32

	createdAt time.Time
	updatedAt time.Time
	version   int
}

// NewNode creates a node from resolved article data. New nodes start
// unexpanded; their weight and color seed are derived immediately.
func NewNode(data ArticleData) (*Node, error) {
	id := valueobjects.NormalizeTitle(data.CanonicalTitle)
	if id == "" {
		return nil, pkgerrors.NewValidationError("canonical title cannot be empty")
	}

	now := time.Now()
	node := &Node{
		id:        id,
		title:     id,
		colorSeed: valueobjects.ColorSeed(id),
		createdAt: now,
		updatedAt: now,
		version:   1,
	}
	node.setResolvedFields(data)

	return node, nil
}

// ReconstructNode rebuilds a node from a persisted snapshot, preserving the
// expanded flag and timestamps.
func ReconstructNode(
	id string,
	content string,
	fullDocument string,
	sourceURL string,
	outgoingLinkTitles []string,
	expanded bool,
	createdAt, updatedAt time.Time,
) (*Node, error) {
	id = valueobjects.NormalizeTitle(id)
	if id == "" {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}

	node := &Node{
		id:        id,
		title:     id,
		colorSeed: valueobjects.ColorSeed(id),
		expanded:  expanded,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   1,
	}
	node.setResolvedFields(ArticleData{
		CanonicalTitle:     id,
		Content:            content,
		FullDocument:       fullDocument,
		SourceURL:          sourceURL,
		OutgoingLinkTitles: outgoingLinkTitles,
	})

	return node, nil
}

// ApplyResolved merges a refetch result into the node: content, document,
// source URL, and link list follow last-write-wins; weight is recomputed.
// The expanded flag is untouched here, it only rises via MarkExpanded.
func (n *Node) ApplyResolved(data ArticleData) {
	n.setResolvedFields(data)
	n.updatedAt = time.Now()
	n.version++
}

func (n *Node) setResolvedFields(data ArticleData) {
	n.content = data.Content
	n.fullDocument = data.FullDocument
	n.sourceURL = data.SourceURL

	n.outgoingLinkTitles = make([]string, 0, len(data.OutgoingLinkTitles))
	n.linkSet = make(map[string]bool, len(data.OutgoingLinkTitles))
	for _, raw := range data.OutgoingLinkTitles {
		normalized := valueobjects.NormalizeTitle(raw)
		if normalized == "" || n.linkSet[normalized] {
			continue
		}
		n.linkSet[normalized] = true
		n.outgoingLinkTitles = append(n.outgoingLinkTitles, normalized)
	}

	substantive := valueobjects.FilterSubstantiveLinks(n.outgoingLinkTitles)
	n.weight = valueobjects.ComputeWeight(len(n.content), len(substantive))
}

// MarkExpanded records that this node's outgoing links have been
// bulk-materialized. Monotonic: there is no way to lower the flag.
func (n *Node) MarkExpanded() {
	if n.expanded {
		return
	}
	n.expanded = true
	n.updatedAt = time.Now()
	n.version++
}

// HasLinkTo reports whether the node's outgoing link list contains the given
// title. The argument is normalized before comparison.
func (n *Node) HasLinkTo(title string) bool {
	return n.linkSet[valueobjects.NormalizeTitle(title)]
}

// ID returns the canonical article title serving as the node's identity
func (n *Node) ID() string {
	return n.id
}

// Title returns the display title (equal to the id in this model)
func (n *Node) Title() string {
	return n.title
}

// Content returns the article summary text
func (n *Node) Content() string {
	return n.content
}

// FullDocument returns the full article markup, opaque to graph logic
func (n *Node) FullDocument() string {
	return n.fullDocument
}

// SourceURL returns the canonical external URL
func (n *Node) SourceURL() string {
	return n.sourceURL
}

// OutgoingLinkTitles returns a copy of the normalized link targets
func (n *Node) OutgoingLinkTitles() []string {
	titles := make([]string, len(n.outgoingLinkTitles))
	copy(titles, n.outgoingLinkTitles)
	return titles
}

// Expanded reports whether outgoing links were bulk-materialized
func (n *Node) Expanded() bool {
	return n.expanded
}

// Weight returns the derived display weight
func (n *Node) Weight() int {
	return n.weight
}

// ColorSeed returns the stable presentation seed
func (n *Node) ColorSeed() uint32 {
	return n.colorSeed
}

// CreatedAt returns when the node was first added
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node was last modified
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

// Version returns the node's mutation count
func (n *Node) Version() int {
	return n.version
}
