// Package server is the thin HTTP boundary over the triage pipeline. It owns
// the collaborator duties the core refuses: minting conversation ids and
// mapping errors to status codes.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	commonerrors "pediatric-triage/internal/common/errors"
	"pediatric-triage/internal/common/logger"
	"pediatric-triage/internal/triage/pipeline"
)

type Handler struct {
	pipeline *pipeline.Pipeline
	logger   logger.Logger
}

func NewHandler(p *pipeline.Pipeline, log logger.Logger) *Handler {
	return &Handler{
		pipeline: p,
		logger:   log.With(map[string]interface{}{"component": "http"}),
	}
}

// Register mounts the triage routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/triage", h.handleTriage)
	mux.HandleFunc("/healthz", h.handleHealth)
}

type triageResponse struct {
	ConversationID string `json:"conversation_id"`
	*pipeline.Result
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *Handler) handleTriage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	// The core never invents ids; the boundary does.
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	result, err := h.pipeline.Process(r.Context(), &req)
	if err != nil {
		h.writeError(w, req.ConversationID, err)
		return
	}

	writeJSON(w, http.StatusOK, triageResponse{
		ConversationID: req.ConversationID,
		Result:         result,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeError(w http.ResponseWriter, conversationID string, err error) {
	code := commonerrors.CodeOf(err)

	status := http.StatusInternalServerError
	switch {
	case code == commonerrors.ErrCodeInvalidRequest:
		status = http.StatusBadRequest
	case commonerrors.IsRetryable(err):
		status = http.StatusServiceUnavailable
	}

	h.logger.WithError(err).Error("request failed", map[string]interface{}{
		"conversationId": conversationID,
		"status":         status,
	})
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
