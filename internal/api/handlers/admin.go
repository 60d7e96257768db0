package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/snowbot/internal/api"
)

// Reindexer re-fetches the snapshot and rebuilds the vector index.
type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

type AdminHandler struct {
	reindexer Reindexer
}

func NewAdminHandler(reindexer Reindexer) *AdminHandler {
	return &AdminHandler{reindexer: reindexer}
}

type ReindexResponse struct {
	Documents int `json:"documents"`
}

// Reindex handles POST /admin/reindex: full fetch, snapshot save, rebuild,
// and atomic swap. Operator-facing, so upstream errors surface in detail.
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	size, err := h.reindexer.Reindex(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, ReindexResponse{Documents: size})
}
