package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/domiapp/domi-backend/internal/database"
	"github.com/domiapp/domi-backend/internal/middleware"
	"github.com/domiapp/domi-backend/internal/models"
	"github.com/domiapp/domi-backend/internal/queue"
	"github.com/domiapp/domi-backend/internal/validation"
)

// ClipHandler handles clip-related requests
type ClipHandler struct {
	clipRepo *database.ClipRepository
	jobQueue queue.JobQueue
	logger   *zap.Logger
}

// NewClipHandler creates a new clip handler
func NewClipHandler(clipRepo *database.ClipRepository, jobQueue queue.JobQueue, logger *zap.Logger) *ClipHandler {
	return &ClipHandler{clipRepo: clipRepo, jobQueue: jobQueue, logger: logger}
}

// RegisterRoutes registers clip routes on the given router
// The router should already have the /clips prefix (e.g., from apiRouter.PathPrefix("/clips"))
func (h *ClipHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListClips).Methods("GET")
	r.HandleFunc("", h.CreateClip).Methods("POST")
	r.HandleFunc("/{id}", h.GetClip).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateClip).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteClip).Methods("DELETE")
	r.HandleFunc("/{id}/reprocess", h.ReprocessClip).Methods("POST")
}

const (
	// MaxClipTitleLength is the maximum length for a clip title
	MaxClipTitleLength = 500
	// MaxClipContentLength is the maximum length for captured clip content
	MaxClipContentLength = 100000
	// DefaultPageSize is the default page size for pagination
	DefaultPageSize = 100
	// MaxPageSize is the maximum page size for pagination
	MaxPageSize = 500
)

// CreateClipRequest represents a create clip request
type CreateClipRequest struct {
	Type        string     `json:"type" validate:"required,clip_type"`
	Title       string     `json:"title" validate:"max=500"`
	Description string     `json:"description"`
	Content     string     `json:"content" validate:"max=100000"`
	SrcURL      string     `json:"src_url" validate:"omitempty,capture_url"`
	Tags        []string   `json:"tags"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
}

// UpdateClipRequest represents a user edit of a clip
type UpdateClipRequest struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	GroupID     *uuid.UUID  `json:"group_id,omitempty"`
}

// ListClipsResponse represents the paginated response for listing clips
type ListClipsResponse struct {
	Clips      []*models.Clip `json:"clips"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// ListClips lists clips for the authenticated user with pagination
func (h *ClipHandler) ListClips(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	ctx := r.Context()

	// Parse pagination parameters
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	pageSize := DefaultPageSize
	if ps := r.URL.Query().Get("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 {
			if parsed > MaxPageSize {
				pageSize = MaxPageSize
			} else {
				pageSize = parsed
			}
		}
	}

	// Parse and validate query parameters
	var status *models.ClipStatus
	if s := r.URL.Query().Get("status"); s != "" {
		if err := validation.ValidateClipStatus(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		sEnum := models.ClipStatus(s)
		status = &sEnum
	}

	var clipType *models.ClipType
	if t := r.URL.Query().Get("type"); t != "" {
		if err := validation.ValidateClipType(t); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		tEnum := models.ClipType(t)
		clipType = &tEnum
	}

	var groupID *uuid.UUID
	if g := r.URL.Query().Get("group_id"); g != "" {
		parsed, err := uuid.Parse(g)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid group ID")
			return
		}
		groupID = &parsed
	}

	clips, total, err := h.clipRepo.GetByUserIDPaginated(ctx, user.ID, status, clipType, groupID, page, pageSize)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve clips")
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	response := ListClipsResponse{
		Clips:      clips,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}

	respondJSON(w, http.StatusOK, response)
}

// CreateClip captures a new clip and enqueues it for enrichment
func (h *ClipHandler) CreateClip(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateClipRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		// Check if error is due to request size limit
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	// Validate request
	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	clipType := models.ClipType(req.Type)

	// Remote clip types carry their locator in src_url and must be http(s)
	if clipType != models.ClipTypeText && req.SrcURL == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("src_url is required for %s clips", clipType))
		return
	}

	title := validation.SanitizeText(req.Title)
	if title == "" {
		title = models.PlaceholderTitle
	}
	if len(title) > MaxClipTitleLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Title exceeds maximum length of %d characters", MaxClipTitleLength))
		return
	}

	content := validation.SanitizeText(req.Content)
	if clipType == models.ClipTypeText && content == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Content is required for text clips")
		return
	}

	ctx := r.Context()
	clip := &models.Clip{
		ID:          uuid.New(),
		UserID:      user.ID,
		GroupID:     req.GroupID,
		Type:        clipType,
		Title:       title,
		Description: req.Description,
		Content:     content,
		SrcURL:      req.SrcURL,
		Tags:        req.Tags,
		Metadata:    models.Metadata{},
		Status:      models.ClipStatusPending,
	}

	if err := h.clipRepo.Create(ctx, clip); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create clip")
		return
	}

	// Enrichment runs asynchronously; capture never waits on the model
	job := queue.NewJob(queue.JobTypeEnrichClip, user.ID, &clip.ID)
	if err := h.jobQueue.Enqueue(ctx, job); err != nil {
		h.logger.Error("failed_to_enqueue_enrichment_job",
			zap.String("clip_id", clip.ID.String()),
			zap.Error(err))
	}

	respondJSON(w, http.StatusCreated, clip)
}

// GetClip retrieves a clip by ID
func (h *ClipHandler) GetClip(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid clip ID")
		return
	}

	ctx := r.Context()
	clip, err := h.clipRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Clip not found")
		return
	}

	// Verify clip belongs to user
	if clip.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Clip does not belong to user")
		return
	}

	respondJSON(w, http.StatusOK, clip)
}

// UpdateClip applies a user edit to an existing clip
func (h *ClipHandler) UpdateClip(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid clip ID")
		return
	}

	ctx := r.Context()
	clip, err := h.clipRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Clip not found")
		return
	}

	// Verify clip belongs to user
	if clip.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Clip does not belong to user")
		return
	}

	var req UpdateClipRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	patch := &models.ClipPatch{
		GroupID: req.GroupID,
	}

	if req.Title != nil {
		sanitized := validation.SanitizeText(*req.Title)
		if sanitized == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title cannot be empty after sanitization")
			return
		}
		if len(sanitized) > MaxClipTitleLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Title exceeds maximum length of %d characters", MaxClipTitleLength))
			return
		}
		patch.Title = &sanitized
	}

	if req.Description != nil {
		sanitized := validation.SanitizeText(*req.Description)
		patch.Description = &sanitized
	}

	if req.Tags != nil {
		patch.Tags = req.Tags
	}

	if err := h.clipRepo.ApplyPatch(ctx, id, patch); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update clip")
		return
	}

	updated, err := h.clipRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to reload clip")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteClip deletes a clip
func (h *ClipHandler) DeleteClip(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid clip ID")
		return
	}

	ctx := r.Context()
	clip, err := h.clipRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Clip not found")
		return
	}

	// Verify clip belongs to user
	if clip.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Clip does not belong to user")
		return
	}

	if err := h.clipRepo.Delete(ctx, id); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete clip")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReprocessClip enqueues a fresh enrichment run for a clip.
// ?mock=true routes the run through the mock metadata path.
func (h *ClipHandler) ReprocessClip(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid clip ID")
		return
	}

	ctx := r.Context()
	clip, err := h.clipRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Clip not found")
		return
	}

	// Verify clip belongs to user
	if clip.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Clip does not belong to user")
		return
	}

	job := queue.NewJob(queue.JobTypeReprocessClip, user.ID, &clip.ID)
	job.Mock = r.URL.Query().Get("mock") == "true"

	if err := h.jobQueue.Enqueue(ctx, job); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to enqueue reprocess job")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]any{
		"clip_id": clip.ID,
		"mock":    job.Mock,
	})
}
