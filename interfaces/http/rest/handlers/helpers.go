package handlers

import (
	"errors"
	"net/http"
	"time"

	"wikigraph-backend/domain/core/entities"
	"wikigraph-backend/pkg/common"
	pkgerrors "wikigraph-backend/pkg/errors"

	"go.uber.org/zap"
)

// NodeView is the wire representation of a graph node
type NodeView struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	SourceURL string   `json:"sourceUrl"`
	Links     []string `json:"links"`
	Expanded  bool     `json:"expanded"`
	Weight    int      `json:"weight"`
	ColorSeed uint32   `json:"colorSeed"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

// EdgeView is the wire representation of a graph edge
type EdgeView struct {
	ID       string `json:"id"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

func toNodeView(node *entities.Node) NodeView {
	return NodeView{
		ID:        node.ID(),
		Title:     node.Title(),
		Content:   node.Content(),
		SourceURL: node.SourceURL(),
		Links:     node.OutgoingLinkTitles(),
		Expanded:  node.Expanded(),
		Weight:    node.Weight(),
		ColorSeed: node.ColorSeed(),
		CreatedAt: node.CreatedAt().Format(time.RFC3339),
		UpdatedAt: node.UpdatedAt().Format(time.RFC3339),
	}
}

func toEdgeView(edge *entities.Edge) EdgeView {
	return EdgeView{
		ID:       edge.ID,
		SourceID: edge.SourceID,
		TargetID: edge.TargetID,
	}
}

// respondServiceError maps a service error onto the response envelope,
// logging only the failures the caller cannot have caused.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := pkgerrors.HTTPStatusFor(err)

	code := "INTERNAL_ERROR"
	message := "internal error"
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
		code = appErr.Code
		if code == "" {
			code = string(appErr.Type)
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}

	common.RespondError(w, status, code, message)
}
