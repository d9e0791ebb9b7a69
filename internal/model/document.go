package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentType enumerates the kinds of generated documents.
type DocumentType string

const (
	DocumentTypeSoal  DocumentType = "soal"
	DocumentTypeModul DocumentType = "modul"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	return t == DocumentTypeSoal || t == DocumentTypeModul
}

// DocumentFilter narrows a document listing. Zero fields match everything.
type DocumentFilter struct {
	Type DocumentType
	// Query matches the title or the "mapel" metadata, case-insensitively.
	Query string
}

// Match reports whether d passes the filter.
func (f DocumentFilter) Match(d *Document) bool {
	if f.Type != "" && d.Type != f.Type {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(d.Title), q) ||
		strings.Contains(strings.ToLower(d.Metadata["mapel"]), q)
}

// ErrWrongDocumentType is returned when typed content is requested from a
// document of the other type.
var ErrWrongDocumentType = errors.New("document has a different type")

// Document is the persisted envelope of a generated soal or modul.
type Document struct {
	ID        uuid.UUID         `json:"id"`
	OwnerID   uuid.UUID         `json:"user_id"`
	Title     string            `json:"title"`
	Type      DocumentType      `json:"type"`
	Content   json.RawMessage   `json:"content"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Soal decodes the content of a soal document.
func (d *Document) Soal() (*SoalContent, error) {
	if d.Type != DocumentTypeSoal {
		return nil, ErrWrongDocumentType
	}
	var s SoalContent
	if err := json.Unmarshal(d.Content, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Modul decodes the content of a modul document.
func (d *Document) Modul() (*ModulContent, error) {
	if d.Type != DocumentTypeModul {
		return nil, ErrWrongDocumentType
	}
	var m ModulContent
	if err := json.Unmarshal(d.Content, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DocumentSummary is the list representation of a document (no content).
type DocumentSummary struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	Type      DocumentType      `json:"type"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Summary strips the content from a document.
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:        d.ID,
		Title:     d.Title,
		Type:      d.Type,
		Metadata:  d.Metadata,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// DocumentPatch holds the fields of an update. Nil fields are left as is.
type DocumentPatch struct {
	Title   *string
	Content json.RawMessage
}

// Empty reports whether the patch changes nothing.
func (p DocumentPatch) Empty() bool {
	return p.Title == nil && len(p.Content) == 0
}

// UpdateDocumentRequest is the payload for a direct document update.
type UpdateDocumentRequest struct {
	Title   *string         `json:"title" binding:"omitempty,min=1,max=255"`
	Content json.RawMessage `json:"content" binding:"omitempty"`
}
