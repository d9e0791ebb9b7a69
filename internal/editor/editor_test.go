package editor

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/model"
)

type fakeSaver struct {
	mu      sync.Mutex
	err     error
	calls   int
	patches []model.DocumentPatch
	// block, when set, holds Update until it is closed.
	block chan struct{}
	// entered is signalled once Update is running.
	entered chan struct{}
}

func (f *fakeSaver) Update(ctx context.Context, ownerID, id uuid.UUID, patch model.DocumentPatch) error {
	f.mu.Lock()
	f.calls++
	f.patches = append(f.patches, patch)
	block, entered, err := f.block, f.entered, f.err
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return err
}

func soalDocument(t *testing.T) *model.Document {
	t.Helper()
	s := model.SoalContent{Questions: []model.Question{
		{
			Number:     1,
			PromptText: "Ibu kota Indonesia?",
			Options:    model.Options{{Key: "a", Text: "Jakarta"}, {Key: "b", Text: "Bandung"}},
			AnswerKey:  "a",
		},
		{Number: 2, PromptText: "Jelaskan fotosintesis", AnswerKey: "Explain photosynthesis"},
	}}
	for i := range s.Questions {
		s.Questions[i].Classify()
	}
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	return &model.Document{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Title:   "Soal IPS",
		Type:    model.DocumentTypeSoal,
		Content: raw,
	}
}

func newSoalEditor(t *testing.T, saver *fakeSaver) *Editor {
	t.Helper()
	e, err := New(soalDocument(t), saver)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestMutationsMarkDirty(t *testing.T) {
	mutations := map[string]func(e *Editor) error{
		"title":       func(e *Editor) error { return e.SetTitle("Soal IPS Kelas 5") },
		"prompt":      func(e *Editor) error { return e.SetPromptText(0, "Ibu kota RI?") },
		"option":      func(e *Editor) error { return e.SetOptionText(0, "b", "Surabaya") },
		"answer":      func(e *Editor) error { return e.SetAnswerKey(0, "B") },
		"explanation": func(e *Editor) error { return e.SetExplanation(1, "Karena klorofil") },
		"essay key":   func(e *Editor) error { return e.SetAnswerKey(1, "Proses tumbuhan") },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			e := newSoalEditor(t, &fakeSaver{})
			if e.State() != StateClean {
				t.Fatal("new editor should be clean")
			}
			if err := mutate(e); err != nil {
				t.Fatalf("mutation: %v", err)
			}
			if e.State() != StateDirty {
				t.Errorf("state = %s, want dirty", e.State())
			}
		})
	}
}

func TestSameValueStillDirty(t *testing.T) {
	e := newSoalEditor(t, &fakeSaver{})
	if err := e.SetTitle("Soal IPS"); err != nil {
		t.Fatal(err)
	}
	if e.State() != StateDirty {
		t.Errorf("state = %s, want dirty", e.State())
	}
}

func TestSaveFromCleanIsNoop(t *testing.T) {
	saver := &fakeSaver{}
	e := newSoalEditor(t, saver)
	if err := e.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if saver.calls != 0 {
		t.Errorf("store called %d times for a clean save", saver.calls)
	}
}

func TestSaveSuccess(t *testing.T) {
	saver := &fakeSaver{}
	e := newSoalEditor(t, saver)
	if err := e.SetOptionText(0, "b", "Surabaya"); err != nil {
		t.Fatal(err)
	}
	if err := e.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if e.State() != StateClean || e.LastError() != nil {
		t.Errorf("state = %s, err = %v", e.State(), e.LastError())
	}

	p := saver.patches[0]
	if p.Title == nil || *p.Title != "Soal IPS" {
		t.Errorf("patch title = %v", p.Title)
	}
	var saved model.SoalContent
	if err := json.Unmarshal(p.Content, &saved); err != nil {
		t.Fatal(err)
	}
	if text, _ := saved.Questions[0].Options.Text("b"); text != "Surabaya" {
		t.Errorf("saved option b = %q", text)
	}
}

func TestSaveFailureKeepsEdits(t *testing.T) {
	storeErr := errors.New("connection refused")
	saver := &fakeSaver{err: storeErr}
	e := newSoalEditor(t, saver)

	if err := e.SetPromptText(0, "Ibu kota negara Indonesia adalah?"); err != nil {
		t.Fatal(err)
	}
	if err := e.Save(context.Background()); !errors.Is(err, storeErr) {
		t.Fatalf("Save error = %v", err)
	}
	if e.State() != StateDirty {
		t.Errorf("state = %s, want dirty", e.State())
	}
	if !errors.Is(e.LastError(), storeErr) {
		t.Errorf("error not surfaced: %v", e.LastError())
	}

	view := e.View()
	var attempted model.SoalContent
	if err := json.Unmarshal(saver.patches[0].Content, &attempted); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(view.Soal, &attempted) {
		t.Errorf("in-memory content differs from the attempted payload\n got %+v\nwant %+v", view.Soal, attempted)
	}

	// A retry is an explicit action and succeeds once the store recovers.
	saver.mu.Lock()
	saver.err = nil
	saver.mu.Unlock()
	if err := e.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if e.State() != StateClean || saver.calls != 2 {
		t.Errorf("retry: state %s, calls %d", e.State(), saver.calls)
	}
}

func TestMutationRejectedWhileSaving(t *testing.T) {
	saver := &fakeSaver{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	e := newSoalEditor(t, saver)
	if err := e.SetTitle("Baru"); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- e.Save(context.Background()) }()
	<-saver.entered

	if e.State() != StateSaving {
		t.Errorf("state = %s, want saving", e.State())
	}
	if err := e.SetTitle("Lagi"); !errors.Is(err, ErrSaveInProgress) {
		t.Errorf("mutation during save: %v", err)
	}
	if err := e.Save(context.Background()); !errors.Is(err, ErrSaveInProgress) {
		t.Errorf("second save: %v", err)
	}

	close(saver.block)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if e.View().Title != "Baru" {
		t.Error("title changed during save")
	}
}

func TestFieldShapeRules(t *testing.T) {
	e := newSoalEditor(t, &fakeSaver{})

	if err := e.SetOptionText(1, "a", "x"); !errors.Is(err, ErrNotMultipleChoice) {
		t.Errorf("option edit on essay: %v", err)
	}
	if err := e.SetAnswerKey(0, "c"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("answer key outside options: %v", err)
	}
	if err := e.SetOptionText(0, "z", "x"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("unknown option: %v", err)
	}
	if err := e.SetPromptText(5, "x"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("index out of range: %v", err)
	}
	if err := e.SetModulText("x"); !errors.Is(err, ErrWrongDocumentType) {
		t.Errorf("modul text on soal: %v", err)
	}
	if e.State() != StateClean {
		t.Errorf("rejected mutations changed state to %s", e.State())
	}

	keys, err := e.AnswerChoices(0)
	if err != nil || !reflect.DeepEqual(keys, []string{"a", "b"}) {
		t.Errorf("AnswerChoices(0) = %v, %v", keys, err)
	}
	if keys, _ := e.AnswerChoices(1); keys != nil {
		t.Errorf("AnswerChoices(1) = %v, want nil", keys)
	}
}

func TestSaveRejectsInvalidContent(t *testing.T) {
	saver := &fakeSaver{}
	e := newSoalEditor(t, saver)
	if err := e.SetPromptText(0, ""); err != nil {
		t.Fatal(err)
	}
	if err := e.Save(context.Background()); err == nil {
		t.Fatal("expected validation error")
	}
	if saver.calls != 0 || e.State() != StateDirty {
		t.Errorf("calls %d, state %s", saver.calls, e.State())
	}
}

func TestModulEditor(t *testing.T) {
	doc := &model.Document{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Title:   "Modul IPA",
		Type:    model.DocumentTypeModul,
		Content: json.RawMessage(`{"text":"# Modul"}`),
	}
	saver := &fakeSaver{}
	e, err := New(doc, saver)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.SetPromptText(0, "x"); !errors.Is(err, ErrWrongDocumentType) {
		t.Errorf("question edit on modul: %v", err)
	}
	if err := e.SetModulText("# Modul Ajar"); err != nil {
		t.Fatal(err)
	}
	if err := e.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if string(saver.patches[0].Content) != `{"text":"# Modul Ajar"}` {
		t.Errorf("saved content = %s", saver.patches[0].Content)
	}
}
