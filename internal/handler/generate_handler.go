package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gurukit/gurukit-backend/internal/middleware"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/gurukit/gurukit-backend/internal/response"
	"github.com/gurukit/gurukit-backend/internal/service"
	"github.com/gurukit/gurukit-backend/internal/validator"
	"github.com/rs/zerolog"
)

// GenerateHandler starts soal and modul generation.
type GenerateHandler struct {
	generationService *service.GenerationService
	log               zerolog.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(generationService *service.GenerationService, log zerolog.Logger) *GenerateHandler {
	return &GenerateHandler{
		generationService: generationService,
		log:               log.With().Str("component", "generate_handler").Logger(),
	}
}

// Soal godoc
// POST /api/v1/generate/soal
// Generates a question set, validates it and auto-saves it to the library.
// Output that does not parse is answered with 422 and is never stored.
func (h *GenerateHandler) Soal(c *gin.Context) {
	var req model.SoalConfig
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.generationService.GenerateSoal(c.Request.Context(), middleware.OwnerID(c), req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Modul godoc
// POST /api/v1/generate/modul
// Generates a modul ajar and auto-saves it to the library.
func (h *GenerateHandler) Modul(c *gin.Context) {
	var req model.ModulConfig
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.generationService.GenerateModul(c.Request.Context(), middleware.OwnerID(c), req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
