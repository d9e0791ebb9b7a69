// Package editor holds an in-memory working copy of a document, tracks
// whether it has unsaved changes and persists it on request.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/content"
	"github.com/gurukit/gurukit-backend/internal/model"
)

// State is the save state of an Editor.
type State string

const (
	StateClean  State = "clean"
	StateDirty  State = "dirty"
	StateSaving State = "saving"
)

// Editor errors. A rejected mutation leaves the working copy unchanged.
var (
	ErrIndexOutOfRange   = errors.New("editor: question index out of range")
	ErrNotMultipleChoice = errors.New("editor: question has no options")
	ErrUnknownOption     = errors.New("editor: option does not exist")
	ErrWrongDocumentType = errors.New("editor: field not available for this document type")
	ErrSaveInProgress    = errors.New("editor: save in progress")
	ErrEmptyTitle        = errors.New("editor: title must not be empty")
)

// Saver persists a document patch on behalf of its owner.
type Saver interface {
	Update(ctx context.Context, ownerID, id uuid.UUID, patch model.DocumentPatch) error
}

// View is a copy of the editor state for display.
type View struct {
	DocumentID uuid.UUID           `json:"document_id"`
	Type       model.DocumentType  `json:"type"`
	Title      string              `json:"title"`
	State      State               `json:"state"`
	LastError  string              `json:"last_error,omitempty"`
	Soal       *model.SoalContent  `json:"soal,omitempty"`
	Modul      *model.ModulContent `json:"modul,omitempty"`
}

// Editor is the working copy of one document.
type Editor struct {
	mu      sync.Mutex
	saver   Saver
	ownerID uuid.UUID
	docID   uuid.UUID
	docType model.DocumentType

	title string
	soal  *model.SoalContent
	modul *model.ModulContent

	state   State
	lastErr error
}

// New loads doc into a Clean editor.
func New(doc *model.Document, saver Saver) (*Editor, error) {
	e := &Editor{
		saver:   saver,
		ownerID: doc.OwnerID,
		docID:   doc.ID,
		docType: doc.Type,
		title:   doc.Title,
		state:   StateClean,
	}

	switch doc.Type {
	case model.DocumentTypeSoal:
		s, err := doc.Soal()
		if err != nil {
			return nil, fmt.Errorf("decode soal: %w", err)
		}
		e.soal = s
	case model.DocumentTypeModul:
		m, err := doc.Modul()
		if err != nil {
			return nil, fmt.Errorf("decode modul: %w", err)
		}
		e.modul = m
	default:
		return nil, ErrWrongDocumentType
	}
	return e, nil
}

// State returns the current save state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastError returns the error of the last failed save, if any.
func (e *Editor) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// View returns a copy of the working state.
func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		DocumentID: e.docID,
		Type:       e.docType,
		Title:      e.title,
		State:      e.state,
	}
	if e.lastErr != nil {
		v.LastError = e.lastErr.Error()
	}
	if e.soal != nil {
		v.Soal = e.soal.Clone()
	}
	if e.modul != nil {
		m := *e.modul
		v.Modul = &m
	}
	return v
}

// SetTitle changes the document title.
func (e *Editor) SetTitle(title string) error {
	return e.mutate(func() error {
		if title == "" {
			return ErrEmptyTitle
		}
		e.title = title
		return nil
	})
}

// SetPromptText changes the body of question i.
func (e *Editor) SetPromptText(i int, text string) error {
	return e.mutateQuestion(i, func(q *model.Question) error {
		q.PromptText = text
		return nil
	})
}

// SetOptionText changes the text of one option of question i. Open-response
// questions have no options to edit.
func (e *Editor) SetOptionText(i int, key, text string) error {
	return e.mutateQuestion(i, func(q *model.Question) error {
		if !q.IsMultipleChoice() {
			return ErrNotMultipleChoice
		}
		if !q.Options.Set(model.NormalizeOptionKey(key), text) {
			return ErrUnknownOption
		}
		return nil
	})
}

// SetAnswerKey changes the answer key of question i. For multiple-choice
// questions the key must be one of the question's own options; for
// open-response questions it is the expected answer text.
func (e *Editor) SetAnswerKey(i int, key string) error {
	return e.mutateQuestion(i, func(q *model.Question) error {
		if q.IsMultipleChoice() {
			key = model.NormalizeOptionKey(key)
			if !q.Options.Has(key) {
				return ErrUnknownOption
			}
		}
		q.AnswerKey = key
		return nil
	})
}

// SetExplanation changes the pembahasan of question i.
func (e *Editor) SetExplanation(i int, text string) error {
	return e.mutateQuestion(i, func(q *model.Question) error {
		q.Explanation = text
		return nil
	})
}

// SetModulText replaces the text of a modul document.
func (e *Editor) SetModulText(text string) error {
	return e.mutate(func() error {
		if e.modul == nil {
			return ErrWrongDocumentType
		}
		e.modul.Text = text
		return nil
	})
}

// AnswerChoices returns the keys an answer key selector may offer for
// question i. It is nil for open-response questions.
func (e *Editor) AnswerChoices(i int) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	q, err := e.question(i)
	if err != nil {
		return nil, err
	}
	if !q.IsMultipleChoice() {
		return nil, nil
	}
	return q.Options.Keys(), nil
}

// Save persists the working copy. Saving a Clean editor is a no-op that
// does not reach the store. On failure the editor returns to Dirty with
// its edits intact and the error is kept in LastError.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case StateClean:
		e.mu.Unlock()
		return nil
	case StateSaving:
		e.mu.Unlock()
		return ErrSaveInProgress
	}

	patch, err := e.patch()
	if err != nil {
		e.lastErr = err
		e.mu.Unlock()
		return err
	}
	e.state = StateSaving
	e.mu.Unlock()

	err = e.saver.Update(ctx, e.ownerID, e.docID, patch)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = StateDirty
		e.lastErr = err
		return err
	}
	e.state = StateClean
	e.lastErr = nil
	return nil
}

func (e *Editor) patch() (model.DocumentPatch, error) {
	var (
		raw []byte
		err error
	)
	if e.soal != nil {
		if err := content.ValidateSoal(e.soal); err != nil {
			return model.DocumentPatch{}, err
		}
		raw, err = json.Marshal(e.soal)
	} else {
		raw, err = json.Marshal(e.modul)
	}
	if err != nil {
		return model.DocumentPatch{}, fmt.Errorf("encode content: %w", err)
	}

	title := e.title
	return model.DocumentPatch{Title: &title, Content: raw}, nil
}

// mutate applies fn and marks the editor Dirty when it succeeds, even if
// the value did not change.
func (e *Editor) mutate(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateSaving {
		return ErrSaveInProgress
	}
	if err := fn(); err != nil {
		return err
	}
	e.state = StateDirty
	return nil
}

func (e *Editor) mutateQuestion(i int, fn func(q *model.Question) error) error {
	return e.mutate(func() error {
		q, err := e.question(i)
		if err != nil {
			return err
		}
		return fn(q)
	})
}

func (e *Editor) question(i int) (*model.Question, error) {
	if e.soal == nil {
		return nil, ErrWrongDocumentType
	}
	if i < 0 || i >= len(e.soal.Questions) {
		return nil, ErrIndexOutOfRange
	}
	return &e.soal.Questions[i], nil
}
