package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gurukit/gurukit-backend/internal/content"
	"github.com/gurukit/gurukit-backend/internal/editor"
	"github.com/gurukit/gurukit-backend/internal/gateway"
	"github.com/gurukit/gurukit-backend/internal/response"
	"github.com/gurukit/gurukit-backend/internal/service"
	"github.com/rs/zerolog"
)

// failWith maps a service error to the response envelope. Unknown errors
// are logged and reported as internal.
func failWith(c *gin.Context, log zerolog.Logger, err error) {
	var formatErr *content.GenerationFormatError
	var validationErr *content.ValidationError

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized)
	case errors.Is(err, service.ErrDocumentNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)
	case errors.Is(err, service.ErrEditorNotOpen):
		response.Fail(c, http.StatusConflict, response.ErrEditorNotOpen)

	case errors.As(err, &formatErr):
		response.FailWithDetail(c, http.StatusUnprocessableEntity, response.ErrGenerationFormat, formatErr.Error())
	case errors.As(err, &validationErr):
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrEditorInvalidState, validationErr.Error())
	case gateway.IsGatewayError(err), errors.Is(err, gateway.ErrNotConfigured):
		log.Error().Err(err).Msg("Generation gateway failed")
		response.Fail(c, http.StatusBadGateway, response.ErrGenerationFailed)
	case service.IsPersistence(err):
		log.Error().Err(err).Msg("Persistence failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrPersistence)

	case errors.Is(err, editor.ErrSaveInProgress):
		response.Fail(c, http.StatusConflict, response.ErrEditorSaving)
	case errors.Is(err, editor.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrEditorIndex)
	case errors.Is(err, editor.ErrNotMultipleChoice):
		response.Fail(c, http.StatusBadRequest, response.ErrEditorNoOptions)
	case errors.Is(err, editor.ErrUnknownOption):
		response.Fail(c, http.StatusBadRequest, response.ErrEditorUnknownKey)
	case errors.Is(err, editor.ErrWrongDocumentType):
		response.Fail(c, http.StatusBadRequest, response.ErrEditorWrongType)
	case errors.Is(err, editor.ErrEmptyTitle):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"title": "title is a required field"})

	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
