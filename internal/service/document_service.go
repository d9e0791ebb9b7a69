package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/content"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// DocumentRepository is the storage used by DocumentService.
// *repository.DocumentRepository implements it.
type DocumentRepository interface {
	Create(ctx context.Context, d *model.Document) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter model.DocumentFilter) ([]model.Document, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Document, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch model.DocumentPatch) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// DocumentService owns the persisted documents of each teacher. Every
// operation takes the owner explicitly.
type DocumentService struct {
	repo  DocumentRepository
	cache QuizCache
	log   zerolog.Logger
}

// NewDocumentService creates a new DocumentService. cache may be nil.
func NewDocumentService(repo DocumentRepository, cache QuizCache, log zerolog.Logger) *DocumentService {
	return &DocumentService{
		repo:  repo,
		cache: cache,
		log:   log.With().Str("component", "document_service").Logger(),
	}
}

// Create stores a new document for ownerID and fills in its id and
// timestamps.
func (s *DocumentService) Create(ctx context.Context, ownerID uuid.UUID, doc *model.Document) error {
	if ownerID == uuid.Nil {
		return ErrUnauthorized
	}
	if !doc.Type.Valid() {
		return fmt.Errorf("create document: unknown type %q", doc.Type)
	}
	doc.OwnerID = ownerID
	if doc.Metadata == nil {
		doc.Metadata = map[string]string{}
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return persistErr("create", err)
	}
	s.log.Info().
		Str("document_id", doc.ID.String()).
		Str("type", string(doc.Type)).
		Msg("Document created")
	return nil
}

// List returns the owner's documents newest first. A storage failure is
// logged and yields an empty list so the dashboard keeps working.
func (s *DocumentService) List(ctx context.Context, ownerID uuid.UUID, filter model.DocumentFilter) []model.DocumentSummary {
	out := []model.DocumentSummary{}
	if ownerID == uuid.Nil {
		return out
	}

	filter.Query = strings.TrimSpace(filter.Query)
	docs, err := s.repo.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to list documents")
		return out
	}
	for i := range docs {
		out = append(out, docs[i].Summary())
	}
	return out
}

// Get returns one of the owner's documents.
func (s *DocumentService) Get(ctx context.Context, ownerID, id uuid.UUID) (*model.Document, error) {
	if ownerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	doc, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, persistErr("get", err)
	}
	return doc, nil
}

// Update patches one of the owner's documents. The owner check happens in
// the store query, so a foreign document is reported as not found.
func (s *DocumentService) Update(ctx context.Context, ownerID, id uuid.UUID, patch model.DocumentPatch) error {
	if ownerID == uuid.Nil {
		return ErrUnauthorized
	}
	if patch.Empty() {
		return nil
	}

	if err := s.repo.Update(ctx, ownerID, id, patch); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrDocumentNotFound
		}
		return persistErr("update", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete removes one of the owner's documents. Deleting a missing document
// succeeds.
func (s *DocumentService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil {
		return ErrUnauthorized
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return persistErr("delete", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// Edit applies a direct update request. New content must decode as the
// document's own type, and soal content must pass validation. It returns
// the stored document.
func (s *DocumentService) Edit(ctx context.Context, ownerID, id uuid.UUID, req model.UpdateDocumentRequest) (*model.Document, error) {
	doc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	patch := model.DocumentPatch{Title: req.Title}
	if len(req.Content) > 0 && !isJSONNull(req.Content) {
		raw, err := normalizeContent(doc.Type, req.Content)
		if err != nil {
			return nil, err
		}
		patch.Content = raw
	}
	if err := s.Update(ctx, ownerID, id, patch); err != nil {
		return nil, err
	}
	return s.Get(ctx, ownerID, id)
}

func normalizeContent(docType model.DocumentType, raw json.RawMessage) (json.RawMessage, error) {
	switch docType {
	case model.DocumentTypeSoal:
		var soal model.SoalContent
		if err := json.Unmarshal(raw, &soal); err != nil {
			return nil, &content.ValidationError{Problems: []string{"content is not a soal document"}}
		}
		if err := content.ValidateSoal(&soal); err != nil {
			return nil, err
		}
		return json.Marshal(&soal)
	default:
		var modul model.ModulContent
		if err := json.Unmarshal(raw, &modul); err != nil {
			return nil, &content.ValidationError{Problems: []string{"content is not a modul document"}}
		}
		return json.Marshal(&modul)
	}
}

func isJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// LoadQuiz returns the validated soal content of a document for playback.
// A missing, foreign, modul or invalid document is ErrQuizNotFound.
func (s *DocumentService) LoadQuiz(ctx context.Context, ownerID, id uuid.UUID) (*model.SoalContent, error) {
	if ownerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if s.cache != nil {
		if soal, ok := s.cache.Get(ctx, ownerID, id); ok {
			return soal, nil
		}
	}

	doc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	soal, err := doc.Soal()
	if err != nil {
		return nil, ErrQuizNotFound
	}
	if err := content.ValidateSoal(soal); err != nil {
		s.log.Warn().Err(err).Str("document_id", id.String()).Msg("Stored soal is not playable")
		return nil, ErrQuizNotFound
	}

	if s.cache != nil {
		s.cache.Set(ctx, ownerID, id, soal)
	}
	return soal, nil
}

func (s *DocumentService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}
