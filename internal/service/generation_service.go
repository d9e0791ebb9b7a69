package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/config"
	"github.com/gurukit/gurukit-backend/internal/content"
	"github.com/gurukit/gurukit-backend/internal/gateway"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/rs/zerolog"
)

// Generator produces raw model text. *gateway.Gemini implements it.
type Generator interface {
	Generate(ctx context.Context, req gateway.Request) (string, error)
}

// titleTopicRunes is how much of the topic goes into an auto-saved title.
const titleTopicRunes = 30

// GenerationResult is the outcome of a generation request. The content is
// returned even when the auto-save failed under the best effort policy.
type GenerationResult struct {
	Type      model.DocumentType     `json:"type"`
	Title     string                 `json:"title"`
	Soal      *model.SoalContent     `json:"soal,omitempty"`
	Modul     *model.ModulContent    `json:"modul,omitempty"`
	Warnings  []string               `json:"warnings,omitempty"`
	Saved     bool                   `json:"saved"`
	Document  *model.DocumentSummary `json:"document,omitempty"`
	SaveError string                 `json:"save_error,omitempty"`
}

// GenerationService runs the generate, validate and auto-save flow.
type GenerationService struct {
	gen      Generator
	docs     *DocumentService
	profiles *ProfileService
	policy   config.AutosavePolicy
	log      zerolog.Logger
}

// NewGenerationService creates a new GenerationService. profiles may be nil.
func NewGenerationService(gen Generator, docs *DocumentService, profiles *ProfileService, policy config.AutosavePolicy, log zerolog.Logger) *GenerationService {
	return &GenerationService{
		gen:      gen,
		docs:     docs,
		profiles: profiles,
		policy:   policy,
		log:      log.With().Str("component", "generation_service").Logger(),
	}
}

// GenerateSoal generates a question set for ownerID. Output that fails
// validation is a *content.GenerationFormatError and nothing is stored.
func (s *GenerationService) GenerateSoal(ctx context.Context, ownerID uuid.UUID, cfg model.SoalConfig) (*GenerationResult, error) {
	if ownerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	cfg.Level, cfg.Subject = s.fillDefaults(ctx, ownerID, cfg.Level, cfg.Subject)

	raw, err := s.gen.Generate(ctx, gateway.SoalRequest(&cfg))
	if err != nil {
		return nil, err
	}
	parsed, err := content.ParseSoal([]byte(raw))
	if err != nil {
		s.log.Warn().Err(err).Int("raw_len", len(raw)).Msg("Rejected generated soal")
		return nil, err
	}

	result := &GenerationResult{
		Type:     model.DocumentTypeSoal,
		Title:    autoTitle("Soal", cfg.Subject, cfg.Topic),
		Soal:     parsed.Soal,
		Warnings: parsed.Warnings,
	}
	metadata := map[string]string{
		"kurikulum": cfg.Curriculum,
		"jenjang":   cfg.Level,
		"fase":      cfg.Phase,
		"kelas":     cfg.Grade,
		"mapel":     cfg.Subject,
		"materi":    cfg.Topic,
	}
	if err := s.autosave(ctx, ownerID, result, parsed.Soal, metadata); err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateModul generates a modul ajar for ownerID.
func (s *GenerationService) GenerateModul(ctx context.Context, ownerID uuid.UUID, cfg model.ModulConfig) (*GenerationResult, error) {
	if ownerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	cfg.Level, cfg.Subject = s.fillDefaults(ctx, ownerID, cfg.Level, cfg.Subject)

	raw, err := s.gen.Generate(ctx, gateway.ModulRequest(&cfg))
	if err != nil {
		return nil, err
	}
	modul, err := content.ParseModul(raw)
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{
		Type:  model.DocumentTypeModul,
		Title: autoTitle("Modul", cfg.Subject, cfg.MainTopic),
		Modul: modul,
	}
	metadata := map[string]string{
		"jenjang": cfg.Level,
		"fase":    cfg.Phase,
		"kelas":   cfg.Grade,
		"mapel":   cfg.Subject,
		"materi":  cfg.MainTopic,
		"alokasi": cfg.TimeAllocation,
		"model":   cfg.LearningModel,
	}
	if err := s.autosave(ctx, ownerID, result, modul, metadata); err != nil {
		return nil, err
	}
	return result, nil
}

// autosave stores the generated content. Under the best effort policy a
// failure is logged and recorded on the result; under strict it is returned.
func (s *GenerationService) autosave(ctx context.Context, ownerID uuid.UUID, result *GenerationResult, body interface{}, metadata map[string]string) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", result.Type, err)
	}

	doc := &model.Document{
		Title:    result.Title,
		Type:     result.Type,
		Content:  raw,
		Metadata: metadata,
	}
	if err := s.docs.Create(ctx, ownerID, doc); err != nil {
		if s.policy == config.AutosaveStrict {
			return err
		}
		s.log.Error().Err(err).
			Str("owner_id", ownerID.String()).
			Str("type", string(result.Type)).
			Msg("Auto-save after generation failed")
		result.SaveError = err.Error()
		return nil
	}

	summary := doc.Summary()
	result.Saved = true
	result.Document = &summary
	return nil
}

func (s *GenerationService) fillDefaults(ctx context.Context, ownerID uuid.UUID, level, subject string) (string, string) {
	if (level != "" && subject != "") || s.profiles == nil {
		return level, subject
	}
	pLevel, pSubject := s.profiles.Defaults(ctx, ownerID)
	if level == "" {
		level = pLevel
	}
	if subject == "" {
		subject = pSubject
	}
	return level, subject
}

// autoTitle builds "<kind> <subject> - <first 30 runes of topic>...".
func autoTitle(kind, subject, topic string) string {
	r := []rune(topic)
	if len(r) > titleTopicRunes {
		r = r[:titleTopicRunes]
	}
	return fmt.Sprintf("%s %s - %s...", kind, subject, string(r))
}
