package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/middleware"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/gurukit/gurukit-backend/internal/response"
	"github.com/gurukit/gurukit-backend/internal/service"
	"github.com/gurukit/gurukit-backend/internal/validator"
	"github.com/rs/zerolog"
)

const maxSearchLength = 100

// DocumentHandler serves the document library.
type DocumentHandler struct {
	documentService *service.DocumentService
	editorService   *service.EditorService
	log             zerolog.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService *service.DocumentService, editorService *service.EditorService, log zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		editorService:   editorService,
		log:             log.With().Str("component", "document_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/documents?type=soal|modul&q=...
// Lists the teacher's documents newest first. q searches the title and the
// mapel. Storage failures yield an empty list.
func (h *DocumentHandler) List(c *gin.Context) {
	docType := model.DocumentType(c.Query("type"))
	if docType != "" && !docType.Valid() {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"type": "type must be one of [soal modul]",
		})
		return
	}
	q := c.Query("q")
	if len(q) > maxSearchLength {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"q": fmt.Sprintf("q must be at most %d characters", maxSearchLength),
		})
		return
	}

	filter := model.DocumentFilter{Type: docType, Query: q}
	docs := h.documentService.List(c.Request.Context(), middleware.OwnerID(c), filter)
	response.Success(c, http.StatusOK, gin.H{"documents": docs})
}

// Get godoc
// GET /api/v1/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), middleware.OwnerID(c), id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"document": doc})
}

// Update godoc
// PUT /api/v1/documents/:id
// Replaces the title and/or content of a document.
func (h *DocumentHandler) Update(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}

	var req model.UpdateDocumentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	doc, err := h.documentService.Edit(c.Request.Context(), middleware.OwnerID(c), id, req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"document": doc})
}

// Delete godoc
// DELETE /api/v1/documents/:id
// Deletes a document and discards any open editor for it.
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	ownerID := middleware.OwnerID(c)

	if err := h.documentService.Delete(c.Request.Context(), ownerID, id); err != nil {
		failWith(c, h.log, err)
		return
	}
	if h.editorService != nil {
		h.editorService.Close(ownerID, id)
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// documentID parses the :id path parameter, answering 400 when it is not a
// UUID.
func documentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
