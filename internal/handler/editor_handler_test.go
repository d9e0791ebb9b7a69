package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gurukit/gurukit-backend/internal/editor"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/gurukit/gurukit-backend/internal/response"
)

func editorView(t *testing.T, data json.RawMessage) editor.View {
	t.Helper()
	var out struct {
		Editor editor.View `json:"editor"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	return out.Editor
}

func TestEditorFlow(t *testing.T) {
	f := newFixture(t)
	doc := f.seed(t, model.DocumentTypeSoal, playableSoal)
	base := "/documents/" + doc.ID.String() + "/editor"

	expectError(t, f.call(t, &f.owner, http.MethodGet, base, nil), http.StatusConflict, response.ErrEditorNotOpen)

	w := f.call(t, &f.owner, http.MethodPost, base, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("open = %d: %s", w.Code, w.Body.String())
	}
	if v := editorView(t, decode(t, w).Data); v.State != editor.StateClean {
		t.Errorf("opened state = %s", v.State)
	}

	w = f.call(t, &f.owner, http.MethodPatch, base+"/questions/0/option", map[string]string{"key": "B", "text": "Lambung"})
	if v := editorView(t, decode(t, w).Data); v.State != editor.StateDirty {
		t.Errorf("state after edit = %s", v.State)
	}

	expectError(t, f.call(t, &f.owner, http.MethodPatch, base+"/questions/0/answer", map[string]string{"key": "c"}),
		http.StatusBadRequest, response.ErrEditorUnknownKey)
	expectError(t, f.call(t, &f.owner, http.MethodPatch, base+"/questions/1/option", map[string]string{"key": "a", "text": "x"}),
		http.StatusBadRequest, response.ErrEditorNoOptions)
	expectError(t, f.call(t, &f.owner, http.MethodPatch, base+"/questions/9/answer", map[string]string{"key": "a"}),
		http.StatusBadRequest, response.ErrEditorIndex)
	expectError(t, f.call(t, &f.owner, http.MethodPatch, base+"/questions/x/answer", map[string]string{"key": "a"}),
		http.StatusBadRequest, response.ErrEditorIndex)
	expectError(t, f.call(t, &f.owner, http.MethodPatch, base+"/title", map[string]string{"title": ""}),
		http.StatusBadRequest, response.ErrValidation)

	w = f.call(t, &f.owner, http.MethodGet, base+"/questions/1/choices", nil)
	if got := string(decode(t, w).Data); got != `{"keys":[]}` {
		t.Errorf("essay choices = %s", got)
	}

	w = f.call(t, &f.owner, http.MethodPost, base+"/save", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("save = %d: %s", w.Code, w.Body.String())
	}
	if v := editorView(t, decode(t, w).Data); v.State != editor.StateClean {
		t.Errorf("state after save = %s", v.State)
	}

	stored, _ := f.repo.GetByID(context.Background(), f.owner, doc.ID)
	soal, err := stored.Soal()
	if err != nil {
		t.Fatal(err)
	}
	if text, _ := soal.Questions[0].Options.Text("b"); text != "Lambung" {
		t.Errorf("stored option b = %q", text)
	}
}

func TestEditorSaveFailureKeepsDirty(t *testing.T) {
	f := newFixture(t)
	doc := f.seed(t, model.DocumentTypeSoal, playableSoal)
	base := "/documents/" + doc.ID.String() + "/editor"

	f.call(t, &f.owner, http.MethodPost, base, nil)
	f.call(t, &f.owner, http.MethodPatch, base+"/title", map[string]string{"title": "Judul Baru"})

	f.repo.setFailWrite(true)
	expectError(t, f.call(t, &f.owner, http.MethodPost, base+"/save", nil), http.StatusInternalServerError, response.ErrPersistence)

	v := editorView(t, decode(t, f.call(t, &f.owner, http.MethodGet, base, nil)).Data)
	if v.State != editor.StateDirty || v.Title != "Judul Baru" || v.LastError == "" {
		t.Errorf("view after failed save = %+v", v)
	}

	f.repo.setFailWrite(false)
	if w := f.call(t, &f.owner, http.MethodPost, base+"/save", nil); w.Code != http.StatusOK {
		t.Errorf("retry = %d", w.Code)
	}
}

func TestDeleteClosesEditor(t *testing.T) {
	f := newFixture(t)
	doc := f.seed(t, model.DocumentTypeSoal, playableSoal)
	base := "/documents/" + doc.ID.String()

	f.call(t, &f.owner, http.MethodPost, base+"/editor", nil)
	f.call(t, &f.owner, http.MethodDelete, base, nil)
	expectError(t, f.call(t, &f.owner, http.MethodGet, base+"/editor", nil), http.StatusConflict, response.ErrEditorNotOpen)
}
