package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/domiapp/domi-backend/internal/models"
	"github.com/domiapp/domi-backend/internal/services/ai"
)

// ClipEnricher runs the enrichment pipeline for a single clip record
type ClipEnricher interface {
	EnrichClip(ctx context.Context, clip *models.Clip, mock bool) (*ai.ClipMetadata, error)
}

// IngestHandler handles the capture trigger endpoint. Clients insert a clip
// row and then call this endpoint with the inserted record to run enrichment
// inline. The response shape is fixed for compatibility with existing capture
// clients and differs from the rest of the API.
type IngestHandler struct {
	enricher ClipEnricher
	logger   *zap.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(enricher ClipEnricher, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{enricher: enricher, logger: logger}
}

// RegisterRoutes registers the trigger route on the given router
// The router should already have the /functions prefix
func (h *IngestHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ingest-clip", h.Ingest).Methods("POST", "OPTIONS")
}

// IngestRequest is the trigger payload. Record is the clip row the client
// just inserted; Mock bypasses the model entirely.
type IngestRequest struct {
	Record *models.Clip `json:"record"`
	Mock   bool         `json:"mock"`
}

// Ingest runs the enrichment pipeline for the posted record.
// Every completed pipeline run answers 200, including model-failure fallback
// paths. 400 is reserved for a missing record and store write failures.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	// Preflight is answered unconditionally, whatever the origin sent
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			h.logger.Warn("failed_to_write_preflight_response", zap.Error(err))
		}
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.triggerError(w, "Invalid request body")
		return
	}

	if req.Record == nil {
		h.triggerError(w, "No record found")
		return
	}

	metadata, err := h.enricher.EnrichClip(r.Context(), req.Record, req.Mock)
	if err != nil {
		h.logger.Error("ingest_pipeline_failed",
			zap.String("clip_id", req.Record.ID.String()),
			zap.Error(err))
		h.triggerError(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := map[string]any{
		"success": true,
		"data":    metadata,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Warn("failed_to_encode_ingest_response", zap.Error(err))
	}
}

// triggerError answers the trigger's flat error shape, always with status 400
func (h *IngestHandler) triggerError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(map[string]any{"error": message}); err != nil {
		h.logger.Warn("failed_to_encode_ingest_error", zap.Error(err))
	}
}
