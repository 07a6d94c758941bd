package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/auth"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/services"
)

// UploadDocumentRequest is the request body for adding a library document.
type UploadDocumentRequest struct {
	Title      string `json:"title"`
	Category   string `json:"category"`
	StorageURL string `json:"storage_url"`
}

// DocumentsHandler handles the library document endpoints.
type DocumentsHandler struct {
	documentService services.DocumentService
	logger          *zap.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(documentService services.DocumentService, logger *zap.Logger) *DocumentsHandler {
	return &DocumentsHandler{documentService: documentService, logger: logger}
}

// RegisterRoutes registers the documents handler's routes on the given mux.
func (h *DocumentsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/documents", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/documents", authMiddleware.RequireAdmin(h.Upload))
	mux.HandleFunc("DELETE /api/documents/{id}", authMiddleware.RequireAdmin(h.Delete))
}

// List handles GET /api/documents.
// An optional category query parameter narrows the listing; either way the
// response only contains categories the viewer may browse.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	if raw := r.URL.Query().Get("category"); raw != "" {
		category, ok := models.ParseCategory(raw)
		if !ok {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_category", "Invalid category"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		docs, err := h.documentService.ListCategory(r.Context(), viewer, category)
		if err != nil {
			writeServiceError(h.logger, w, err)
			return
		}
		if err := WriteJSON(w, http.StatusOK, docs); err != nil {
			h.logger.Error("Failed to encode documents response", zap.Error(err))
		}
		return
	}

	docs, err := h.documentService.List(r.Context(), viewer)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, docs); err != nil {
		h.logger.Error("Failed to encode documents response", zap.Error(err))
	}
}

// Upload handles POST /api/documents.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())
	claims, _ := auth.GetClaims(r.Context())

	var req UploadDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Title == "" || req.StorageURL == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_fields", "Title and storage URL are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	doc := &models.Document{
		Title:      req.Title,
		Category:   models.Category(req.Category),
		StorageURL: req.StorageURL,
	}
	if uploader, ok := claims.MemberUUID(); ok {
		doc.UploadedBy = uploader
	}

	if err := h.documentService.Upload(r.Context(), viewer, doc); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, doc); err != nil {
		h.logger.Error("Failed to encode document response", zap.Error(err))
	}
}

// Delete handles DELETE /api/documents/{id}.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_document_id", "Invalid document ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.documentService.Delete(r.Context(), viewer, id); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
