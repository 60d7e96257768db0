package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cloo-solutions/snowbot/internal/api"
	"github.com/cloo-solutions/snowbot/internal/domain"
)

// AskService answers questions against the pre-built index.
type AskService interface {
	Ask(ctx context.Context, question string) (domain.Answer, error)
	Ready() bool
	IndexSize() int
}

type AskHandler struct {
	svc AskService
}

func NewAskHandler(svc AskService) *AskHandler {
	return &AskHandler{svc: svc}
}

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type ReadyResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

// Ask handles POST /ask. Rejections carry {"error": ...}; everything else,
// including the generation-failure fallback text, carries {"answer": ...}.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.svc.Ready() {
		api.Error(w, http.StatusServiceUnavailable, domain.ErrIndexNotReady.Message)
		return
	}

	answer, err := h.svc.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotReady) {
			api.Error(w, http.StatusServiceUnavailable, domain.ErrIndexNotReady.Message)
			return
		}
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing your question.")
		return
	}

	if answer.Kind == domain.AnswerKindEmptyQuestion {
		api.Error(w, http.StatusBadRequest, answer.Text)
		return
	}

	api.JSON(w, http.StatusOK, AskResponse{Answer: answer.Text})
}

// Ready handles GET /ready, reporting whether startup indexing completed.
func (h *AskHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Ready() {
		api.Error(w, http.StatusServiceUnavailable, domain.ErrIndexNotReady.Message)
		return
	}
	api.Success(w, http.StatusOK, ReadyResponse{
		Status:    "ready",
		Documents: h.svc.IndexSize(),
	})
}
