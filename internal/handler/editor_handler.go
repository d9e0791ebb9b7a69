package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gurukit/gurukit-backend/internal/editor"
	"github.com/gurukit/gurukit-backend/internal/middleware"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/gurukit/gurukit-backend/internal/response"
	"github.com/gurukit/gurukit-backend/internal/service"
	"github.com/gurukit/gurukit-backend/internal/validator"
	"github.com/rs/zerolog"
)

// EditorHandler exposes the in-memory document editor. Edits only reach
// storage through Save.
type EditorHandler struct {
	editorService *service.EditorService
	log           zerolog.Logger
}

// NewEditorHandler creates a new EditorHandler.
func NewEditorHandler(editorService *service.EditorService, log zerolog.Logger) *EditorHandler {
	return &EditorHandler{
		editorService: editorService,
		log:           log.With().Str("component", "editor_handler").Logger(),
	}
}

// Open godoc
// POST /api/v1/documents/:id/editor
// Loads a document into a fresh editor. Reopening discards unsaved edits.
func (h *EditorHandler) Open(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}

	e, err := h.editorService.Open(c.Request.Context(), middleware.OwnerID(c), id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"editor": e.View()})
}

// Get godoc
// GET /api/v1/documents/:id/editor
func (h *EditorHandler) Get(c *gin.Context) {
	e, ok := h.editor(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"editor": e.View()})
}

// Discard godoc
// DELETE /api/v1/documents/:id/editor
// Closes the editor without saving.
func (h *EditorHandler) Discard(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	h.editorService.Close(middleware.OwnerID(c), id)
	response.Success(c, http.StatusOK, gin.H{})
}

// SetTitle godoc
// PATCH /api/v1/documents/:id/editor/title
func (h *EditorHandler) SetTitle(c *gin.Context) {
	var req model.EditTitleRequest
	if !bindEdit(c, &req) {
		return
	}
	h.apply(c, func(e *editor.Editor) error { return e.SetTitle(req.Title) })
}

// SetPrompt godoc
// PATCH /api/v1/documents/:id/editor/questions/:index/prompt
func (h *EditorHandler) SetPrompt(c *gin.Context) {
	i, ok := questionIndex(c)
	if !ok {
		return
	}
	var req model.EditTextRequest
	if !bindEdit(c, &req) {
		return
	}
	h.apply(c, func(e *editor.Editor) error { return e.SetPromptText(i, req.Text) })
}

// SetOption godoc
// PATCH /api/v1/documents/:id/editor/questions/:index/option
func (h *EditorHandler) SetOption(c *gin.Context) {
	i, ok := questionIndex(c)
	if !ok {
		return
	}
	var req model.EditOptionRequest
	if !bindEdit(c, &req) {
		return
	}
	h.apply(c, func(e *editor.Editor) error { return e.SetOptionText(i, req.Key, req.Text) })
}

// SetAnswer godoc
// PATCH /api/v1/documents/:id/editor/questions/:index/answer
// Multiple-choice keys must name one of the question's options.
func (h *EditorHandler) SetAnswer(c *gin.Context) {
	i, ok := questionIndex(c)
	if !ok {
		return
	}
	var req model.EditAnswerRequest
	if !bindEdit(c, &req) {
		return
	}
	h.apply(c, func(e *editor.Editor) error { return e.SetAnswerKey(i, req.Key) })
}

// SetExplanation godoc
// PATCH /api/v1/documents/:id/editor/questions/:index/explanation
func (h *EditorHandler) SetExplanation(c *gin.Context) {
	i, ok := questionIndex(c)
	if !ok {
		return
	}
	var req model.EditTextRequest
	if !bindEdit(c, &req) {
		return
	}
	h.apply(c, func(e *editor.Editor) error { return e.SetExplanation(i, req.Text) })
}

// SetModul godoc
// PATCH /api/v1/documents/:id/editor/modul
func (h *EditorHandler) SetModul(c *gin.Context) {
	var req model.EditTextRequest
	if !bindEdit(c, &req) {
		return
	}
	h.apply(c, func(e *editor.Editor) error { return e.SetModulText(req.Text) })
}

// Choices godoc
// GET /api/v1/documents/:id/editor/questions/:index/choices
// Returns the keys the answer key selector may offer. Empty for
// open-response questions.
func (h *EditorHandler) Choices(c *gin.Context) {
	i, ok := questionIndex(c)
	if !ok {
		return
	}
	e, ok := h.editor(c)
	if !ok {
		return
	}
	keys, err := e.AnswerChoices(i)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	response.Success(c, http.StatusOK, gin.H{"keys": keys})
}

// Save godoc
// POST /api/v1/documents/:id/editor/save
// Persists the working copy. On failure the edits stay in memory and the
// editor view reports dirty with the last error.
func (h *EditorHandler) Save(c *gin.Context) {
	e, ok := h.editor(c)
	if !ok {
		return
	}
	if err := e.Save(c.Request.Context()); err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"editor": e.View()})
}

func (h *EditorHandler) editor(c *gin.Context) (*editor.Editor, bool) {
	id, ok := documentID(c)
	if !ok {
		return nil, false
	}
	e, err := h.editorService.Get(middleware.OwnerID(c), id)
	if err != nil {
		failWith(c, h.log, err)
		return nil, false
	}
	return e, true
}

func (h *EditorHandler) apply(c *gin.Context, mutate func(e *editor.Editor) error) {
	e, ok := h.editor(c)
	if !ok {
		return
	}
	if err := mutate(e); err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"editor": e.View()})
}

func bindEdit(c *gin.Context, dst interface{}) bool {
	if fields := validator.Bind(c, dst); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return false
	}
	return true
}

// questionIndex parses the zero-based :index path parameter.
func questionIndex(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil || i < 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrEditorIndex)
		return 0, false
	}
	return i, true
}
