package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ProfileRepository is the storage used by ProfileService.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	Upsert(ctx context.Context, p *model.Profile) error
}

// ProfileService manages teacher onboarding profiles.
type ProfileService struct {
	repo ProfileRepository
	log  zerolog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(repo ProfileRepository, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		repo: repo,
		log:  log.With().Str("component", "profile_service").Logger(),
	}
}

// Get returns the user's profile. A user without a stored profile gets an
// empty, not onboarded one.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.Profile{UserID: userID}, nil
		}
		return nil, persistErr("get profile", err)
	}
	return p, nil
}

// Update applies the non-nil fields of req.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		p.FullName = *req.FullName
	}
	if req.Level != nil {
		p.Level = *req.Level
	}
	if req.Subject != nil {
		p.Subject = *req.Subject
	}
	if req.Onboarded != nil {
		p.Onboarded = *req.Onboarded
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, persistErr("update profile", err)
	}
	return p, nil
}

// Defaults returns the level and subject used to pre-fill generation
// requests. Lookup failures yield empty defaults.
func (s *ProfileService) Defaults(ctx context.Context, userID uuid.UUID) (level, subject string) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("Profile defaults unavailable")
		return "", ""
	}
	return p.Level, p.Subject
}
