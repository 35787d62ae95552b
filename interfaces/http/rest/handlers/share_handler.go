package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	appservices "wikigraph-backend/application/services"
	"wikigraph-backend/domain/core/aggregates"
	"wikigraph-backend/pkg/common"
	"wikigraph-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ShareHandler handles snapshot sharing, loading, and statistics requests
type ShareHandler struct {
	share  *appservices.ShareService
	replay *appservices.ReplayService
	logger *zap.Logger
}

// NewShareHandler creates a new share handler
func NewShareHandler(
	share *appservices.ShareService,
	replay *appservices.ReplayService,
	logger *zap.Logger,
) *ShareHandler {
	return &ShareHandler{
		share:  share,
		replay: replay,
		logger: logger,
	}
}

// ShareRequest represents the request body for sharing or forking
type ShareRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	CreatorName string `json:"creatorName,omitempty" validate:"omitempty,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// SnapshotResponse represents a stored snapshot's metadata
type SnapshotResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CreatorName string `json:"creatorName,omitempty"`
	Description string `json:"description,omitempty"`
	NodeCount   int    `json:"nodeCount"`
	EdgeCount   int    `json:"edgeCount"`
	CreatedAt   string `json:"createdAt"`
	ExpiresAt   string `json:"expiresAt"`
	ViewCount   int64  `json:"viewCount"`
}

// Share handles POST /snapshots
func (h *ShareHandler) Share(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeShareRequest(w, r)
	if !ok {
		return
	}

	snap, err := h.share.Share(r.Context(), req.Title, req.CreatorName, req.Description)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toSnapshotResponse(snap))
}

// GetSnapshot handles GET /snapshots/{snapshotID}
func (h *ShareHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshotID := chi.URLParam(r, "snapshotID")
	if snapshotID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "snapshot id is required")
		return
	}

	snap, err := h.share.Load(r.Context(), snapshotID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

// LoadSnapshot handles POST /snapshots/{snapshotID}/load. The session graph
// is replaced by the snapshot's content, replayed in discovery order.
func (h *ShareHandler) LoadSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshotID := chi.URLParam(r, "snapshotID")
	if snapshotID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "snapshot id is required")
		return
	}

	snap, err := h.share.Load(r.Context(), snapshotID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	if err := h.replay.Load(r.Context(), snap); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusAccepted, toSnapshotResponse(snap))
}

// CancelReplay handles POST /replay/cancel
func (h *ShareHandler) CancelReplay(w http.ResponseWriter, r *http.Request) {
	h.replay.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

// Fork handles POST /snapshots/{snapshotID}/fork
func (h *ShareHandler) Fork(w http.ResponseWriter, r *http.Request) {
	snapshotID := chi.URLParam(r, "snapshotID")
	if snapshotID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "snapshot id is required")
		return
	}

	req, ok := h.decodeShareRequest(w, r)
	if !ok {
		return
	}

	forked, err := h.share.Fork(r.Context(), snapshotID, req.Title, req.CreatorName, req.Description)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toSnapshotResponse(forked))
}

// SnapshotStats handles GET /snapshots/{snapshotID}/stats
func (h *ShareHandler) SnapshotStats(w http.ResponseWriter, r *http.Request) {
	snapshotID := chi.URLParam(r, "snapshotID")
	if snapshotID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "snapshot id is required")
		return
	}

	stats, err := h.share.SnapshotStats(r.Context(), snapshotID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, stats)
}

// ArticleStats handles GET /stats/articles?title=...
func (h *ShareHandler) ArticleStats(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "title query parameter is required")
		return
	}

	stats, err := h.share.ArticleStats(r.Context(), title)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, stats)
}

func (h *ShareHandler) decodeShareRequest(w http.ResponseWriter, r *http.Request) (ShareRequest, bool) {
	var req ShareRequest
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

func toSnapshotResponse(snap *aggregates.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:          snap.ID,
		Title:       snap.Title,
		CreatorName: snap.CreatorName,
		Description: snap.Description,
		NodeCount:   len(snap.Nodes),
		EdgeCount:   len(snap.Edges),
		CreatedAt:   snap.CreatedAt.Format(time.RFC3339),
		ExpiresAt:   snap.ExpiresAt.Format(time.RFC3339),
		ViewCount:   snap.ViewCount,
	}
}
