package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles document data access. Every query is scoped to
// the owning user.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

const documentColumns = `id, user_id, title, type, content, metadata, created_at, updated_at`

func scanDocument(row pgx.Row, d *model.Document) error {
	var content []byte
	if err := row.Scan(&d.ID, &d.OwnerID, &d.Title, &d.Type, &content, &d.Metadata, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return err
	}
	d.Content = json.RawMessage(content)
	return nil
}

// Create inserts a document and fills in its id and timestamps.
func (r *DocumentRepository) Create(ctx context.Context, d *model.Document) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO documents (user_id, title, type, content, metadata)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		d.OwnerID, d.Title, d.Type, []byte(d.Content), d.Metadata,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// ListByOwner returns the owner's documents newest first, optionally
// restricted to one type and to a title or mapel search. Content is not
// loaded.
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter model.DocumentFilter) ([]model.Document, error) {
	query := `SELECT id, user_id, title, type, metadata, created_at, updated_at
		 FROM documents WHERE user_id = $1`
	args := []interface{}{ownerID}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if filter.Query != "" {
		args = append(args, likePattern(filter.Query))
		n := len(args)
		query += fmt.Sprintf(` AND (title ILIKE $%d ESCAPE '\' OR metadata->>'mapel' ILIKE $%d ESCAPE '\')`, n, n)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Title, &d.Type, &d.Metadata, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// likePattern wraps q for a substring ILIKE, escaping its wildcards.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GetByID retrieves one of the owner's documents. A document of another
// owner is reported as pgx.ErrNoRows.
func (r *DocumentRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Document, error) {
	d := &model.Document{}
	err := scanDocument(r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1 AND user_id = $2`, id, ownerID,
	), d)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Update applies patch to one of the owner's documents. It returns
// pgx.ErrNoRows when no row matched.
func (r *DocumentRepository) Update(ctx context.Context, ownerID, id uuid.UUID, patch model.DocumentPatch) error {
	var content []byte
	if len(patch.Content) > 0 {
		content = patch.Content
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents
		 SET title = COALESCE($1, title),
		     content = COALESCE($2::jsonb, content),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3 AND user_id = $4`,
		patch.Title, content, id, ownerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes one of the owner's documents. Deleting a missing document
// is not an error.
func (r *DocumentRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1 AND user_id = $2`, id, ownerID)
	return err
}
