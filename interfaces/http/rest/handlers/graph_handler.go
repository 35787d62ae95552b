package handlers

import (
	"encoding/json"
	"net/http"

	appservices "wikigraph-backend/application/services"
	"wikigraph-backend/domain/core/aggregates"
	"wikigraph-backend/pkg/common"
	"wikigraph-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GraphHandler handles exploration requests against the session graph
type GraphHandler struct {
	linker *appservices.LinkerService
	graph  *aggregates.Graph
	logger *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(
	linker *appservices.LinkerService,
	graph *aggregates.Graph,
	logger *zap.Logger,
) *GraphHandler {
	return &GraphHandler{
		linker: linker,
		graph:  graph,
		logger: logger,
	}
}

// LinkRequest represents the request body for navigate and augment
type LinkRequest struct {
	SourceID string `json:"sourceId,omitempty"`
	Query    string `json:"query" validate:"required,min=1"`
}

// LinkResponse represents the outcome of a link operation
type LinkResponse struct {
	Node            NodeView   `json:"node"`
	NodeCreated     bool       `json:"nodeCreated"`
	Edge            *EdgeView  `json:"edge,omitempty"`
	EdgeCreated     bool       `json:"edgeCreated"`
	AlreadyPresent  bool       `json:"alreadyPresent"`
	DiscoveredEdges []EdgeView `json:"discoveredEdges,omitempty"`
}

// GraphResponse represents the full session graph
type GraphResponse struct {
	Nodes     []NodeView `json:"nodes"`
	Edges     []EdgeView `json:"edges"`
	RootIDs   []string   `json:"rootIds"`
	NodeCount int        `json:"nodeCount"`
	EdgeCount int        `json:"edgeCount"`
	Version   int        `json:"version"`
}

// ExpandResponse summarizes a node expansion
type ExpandResponse struct {
	NodesAdded  int `json:"nodesAdded"`
	EdgesAdded  int `json:"edgesAdded"`
	LinksFailed int `json:"linksFailed"`
}

// RemoveResponse summarizes a cascade removal
type RemoveResponse struct {
	RemovedNodeIDs []string `json:"removedNodeIds"`
	RemovedEdgeIDs []string `json:"removedEdgeIds"`
}

// Navigate handles POST /graph/navigate
func (h *GraphHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLinkRequest(w, r)
	if !ok {
		return
	}

	result, err := h.linker.NavigateTo(r.Context(), req.SourceID, req.Query)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toLinkResponse(result))
}

// Augment handles POST /graph/augment. Same linking semantics as navigate,
// but the current selection stays where it is.
func (h *GraphHandler) Augment(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLinkRequest(w, r)
	if !ok {
		return
	}

	result, err := h.linker.Augment(r.Context(), req.SourceID, req.Query)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toLinkResponse(result))
}

// Back handles POST /graph/back
func (h *GraphHandler) Back(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := h.linker.Back()
	if !ok {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "navigation history is empty")
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"nodeId": nodeID})
}

// Current handles GET /graph/current
func (h *GraphHandler) Current(w http.ResponseWriter, r *http.Request) {
	nodeID := h.linker.Current()
	if nodeID == "" {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "no current selection")
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"nodeId": nodeID})
}

// GetGraph handles GET /graph
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	nodes := h.graph.Nodes()
	edges := h.graph.Edges()
	roots := h.graph.RootNodes()

	response := GraphResponse{
		Nodes:     make([]NodeView, 0, len(nodes)),
		Edges:     make([]EdgeView, 0, len(edges)),
		RootIDs:   make([]string, 0, len(roots)),
		NodeCount: len(nodes),
		EdgeCount: len(edges),
		Version:   h.graph.Version(),
	}
	for _, node := range nodes {
		response.Nodes = append(response.Nodes, toNodeView(node))
	}
	for _, edge := range edges {
		response.Edges = append(response.Edges, toEdgeView(edge))
	}
	for _, root := range roots {
		response.RootIDs = append(response.RootIDs, root.ID())
	}

	common.RespondJSON(w, http.StatusOK, response)
}

// GetNode handles GET /graph/nodes/{nodeID}
func (h *GraphHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if nodeID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "node id is required")
		return
	}

	node, err := h.graph.GetNode(nodeID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toNodeView(node))
}

// ExpandNode handles POST /graph/nodes/{nodeID}/expand
func (h *GraphHandler) ExpandNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if nodeID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "node id is required")
		return
	}

	result, err := h.linker.ExpandNode(r.Context(), nodeID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ExpandResponse{
		NodesAdded:  result.NodesAdded,
		EdgesAdded:  result.EdgesAdded,
		LinksFailed: result.LinksFailed,
	})
}

// RemoveNode handles DELETE /graph/nodes/{nodeID}
func (h *GraphHandler) RemoveNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if nodeID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "node id is required")
		return
	}

	result := h.linker.RemoveNode(nodeID)

	response := RemoveResponse{
		RemovedNodeIDs: make([]string, 0, len(result.RemovedNodes)),
		RemovedEdgeIDs: make([]string, 0, len(result.RemovedEdges)),
	}
	for _, node := range result.RemovedNodes {
		response.RemovedNodeIDs = append(response.RemovedNodeIDs, node.ID())
	}
	for _, edge := range result.RemovedEdges {
		response.RemovedEdgeIDs = append(response.RemovedEdgeIDs, edge.ID)
	}

	common.RespondJSON(w, http.StatusOK, response)
}

func (h *GraphHandler) decodeLinkRequest(w http.ResponseWriter, r *http.Request) (LinkRequest, bool) {
	var req LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return req, false
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return req, false
	}
	return req, true
}

func toLinkResponse(result *appservices.LinkResult) LinkResponse {
	response := LinkResponse{
		Node:           toNodeView(result.Node),
		NodeCreated:    result.NodeCreated,
		EdgeCreated:    result.EdgeCreated,
		AlreadyPresent: result.AlreadyPresent,
	}
	if result.Edge != nil {
		edge := toEdgeView(result.Edge)
		response.Edge = &edge
	}
	for _, discovered := range result.DiscoveredEdges {
		response.DiscoveredEdges = append(response.DiscoveredEdges, toEdgeView(discovered))
	}
	return response
}
