package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/gurukit/gurukit-backend/internal/response"
)

func TestDocumentOwnership(t *testing.T) {
	f := newFixture(t)
	doc := f.seed(t, model.DocumentTypeSoal, playableSoal)
	stranger := uuid.New()
	path := "/documents/" + doc.ID.String()

	expectError(t, f.call(t, nil, http.MethodGet, path, nil), http.StatusUnauthorized, response.ErrUnauthorized)
	expectError(t, f.call(t, &stranger, http.MethodGet, path, nil), http.StatusNotFound, response.ErrNotFound)
	expectError(t, f.call(t, &f.owner, http.MethodGet, "/documents/not-a-uuid", nil), http.StatusBadRequest, response.ErrInvalidID)

	// A stranger's delete succeeds but removes nothing.
	if w := f.call(t, &stranger, http.MethodDelete, path, nil); w.Code != http.StatusOK {
		t.Fatalf("stranger delete = %d", w.Code)
	}
	if w := f.call(t, &f.owner, http.MethodGet, path, nil); w.Code != http.StatusOK {
		t.Fatalf("owner get = %d: %s", w.Code, w.Body.String())
	}
}

func TestDocumentListFilter(t *testing.T) {
	f := newFixture(t)
	f.seed(t, model.DocumentTypeSoal, playableSoal)
	f.seed(t, model.DocumentTypeModul, `{"text":"# Modul"}`)

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?type=soal", 1},
		{"?type=modul", 1},
	}
	for _, tt := range tests {
		w := f.call(t, &f.owner, http.MethodGet, "/documents"+tt.query, nil)
		var data struct {
			Documents []model.DocumentSummary `json:"documents"`
		}
		if err := json.Unmarshal(decode(t, w).Data, &data); err != nil {
			t.Fatal(err)
		}
		if len(data.Documents) != tt.want {
			t.Errorf("list%s = %d documents, want %d", tt.query, len(data.Documents), tt.want)
		}
	}

	expectError(t, f.call(t, &f.owner, http.MethodGet, "/documents?type=pdf", nil), http.StatusBadRequest, response.ErrValidation)

	// Another teacher sees an empty, non-null list.
	stranger := uuid.New()
	w := f.call(t, &stranger, http.MethodGet, "/documents", nil)
	if got := string(decode(t, w).Data); got != `{"documents":[]}` {
		t.Errorf("stranger list = %s", got)
	}
}

func TestDocumentListSearch(t *testing.T) {
	f := newFixture(t)
	f.seed(t, model.DocumentTypeSoal, playableSoal)
	pecahan := &model.Document{
		Title:    "Modul Pecahan",
		Type:     model.DocumentTypeModul,
		Content:  json.RawMessage(`{"text":"# Pecahan"}`),
		Metadata: map[string]string{"mapel": "Matematika"},
	}
	if err := f.docs.Create(context.Background(), f.owner, pecahan); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"?q=ipa", 1},
		{"?q=MATEMATIKA", 1},
		{"?q=pecahan&type=soal", 0},
		{"?q=modul&type=modul", 1},
		{"?q=%20%20", 2},
		{"?q=fisika", 0},
	}
	for _, tt := range tests {
		w := f.call(t, &f.owner, http.MethodGet, "/documents"+tt.query, nil)
		var data struct {
			Documents []model.DocumentSummary `json:"documents"`
		}
		if err := json.Unmarshal(decode(t, w).Data, &data); err != nil {
			t.Fatal(err)
		}
		if len(data.Documents) != tt.want {
			t.Errorf("list%s = %d documents, want %d", tt.query, len(data.Documents), tt.want)
		}
	}

	long := "/documents?q=" + strings.Repeat("a", maxSearchLength+1)
	expectError(t, f.call(t, &f.owner, http.MethodGet, long, nil), http.StatusBadRequest, response.ErrValidation)
}

func TestDocumentUpdateValidatesContent(t *testing.T) {
	f := newFixture(t)
	doc := f.seed(t, model.DocumentTypeSoal, playableSoal)
	path := "/documents/" + doc.ID.String()

	broken := map[string]interface{}{
		"content": json.RawMessage(`{"soal":[{"nomor":1,"soal":"x","opsi":{"a":"1"},"kunci_jawaban":"z"}]}`),
	}
	expectError(t, f.call(t, &f.owner, http.MethodPut, path, broken), http.StatusBadRequest, response.ErrEditorInvalidState)

	w := f.call(t, &f.owner, http.MethodPut, path, map[string]string{"title": "Soal IPA Revisi"})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", w.Code, w.Body.String())
	}
	var data struct {
		Document model.Document `json:"document"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Document.Title != "Soal IPA Revisi" {
		t.Errorf("title = %q", data.Document.Title)
	}
}

func TestDocumentWriteFailure(t *testing.T) {
	f := newFixture(t)
	doc := f.seed(t, model.DocumentTypeSoal, playableSoal)
	f.repo.setFailWrite(true)

	w := f.call(t, &f.owner, http.MethodPut, "/documents/"+doc.ID.String(), map[string]string{"title": "Baru"})
	expectError(t, w, http.StatusInternalServerError, response.ErrPersistence)
}
