package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles teacher onboarding profiles.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetByUserID retrieves the profile of a user.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	p := &model.Profile{}
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, full_name, jenjang, mata_pelajaran, onboarded, updated_at
		 FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.FullName, &p.Level, &p.Subject, &p.Onboarded, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Upsert stores the profile, creating it if the user has none yet.
func (r *ProfileRepository) Upsert(ctx context.Context, p *model.Profile) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO profiles (user_id, full_name, jenjang, mata_pelajaran, onboarded)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE
		 SET full_name = EXCLUDED.full_name,
		     jenjang = EXCLUDED.jenjang,
		     mata_pelajaran = EXCLUDED.mata_pelajaran,
		     onboarded = EXCLUDED.onboarded,
		     updated_at = CURRENT_TIMESTAMP
		 RETURNING updated_at`,
		p.UserID, p.FullName, p.Level, p.Subject, p.Onboarded,
	).Scan(&p.UpdatedAt)
}
