package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFailEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) {
		FailWithDetail(c, http.StatusUnprocessableEntity, ErrGenerationFormat, "soal is empty")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}
	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error == nil || body.Error.Code != ErrGenerationFormat || body.Error.Detail != "soal is empty" {
		t.Errorf("error body = %+v", body.Error)
	}
	if body.Metadata.RequestID != "abc-123" {
		t.Errorf("request id = %q", body.Metadata.RequestID)
	}
}

func TestRequestIDRejectsOversizedHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { Success(c, http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("a", 200))
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("X-Request-ID = %q, want a generated uuid", got)
	}
}

func TestEveryCodeHasMessage(t *testing.T) {
	codes := []ErrCode{
		ErrInvalidCredentials, ErrSessionInvalidated, ErrTokenRequired, ErrTokenInvalid, ErrUnauthorized,
		ErrValidation, ErrInvalidID, ErrInvalidPayload, ErrNotFound, ErrConflict, ErrQuizNotFound,
		ErrGenerationFormat, ErrGenerationFailed, ErrPersistence,
		ErrEditorNotOpen, ErrEditorSaving, ErrEditorIndex, ErrEditorNoOptions, ErrEditorUnknownKey,
		ErrEditorWrongType, ErrEditorInvalidState, ErrRateLimitExceeded, ErrInternal,
	}
	fallback := GetMessage("SOMETHING_ELSE")
	for _, c := range codes {
		if GetMessage(c) == fallback {
			t.Errorf("%s has no message", c)
		}
	}
}
