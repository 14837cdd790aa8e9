// Package projects provides a PostgreSQL-backed repository for translation
// projects: the quote parameters plus the vault file metadata persisted on
// behalf of the store (the vault keeps no index of its own).
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lingvera/lingvera/internal/common"
	"github.com/lingvera/lingvera/internal/dbx"
	"github.com/lingvera/lingvera/internal/server/models"
)

const projectColumns = `id, user_id, name, source_lang, target_langs, word_count, price_cents, status,
		original_handle, original_name, original_mime, original_size,
		deliverable_handle, deliverable_name, deliverable_mime, deliverable_size,
		created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new project row.
func (r *PostgresRepository) Create(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO projects (id, user_id, name, source_lang, target_langs, word_count, price_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Name, p.SourceLang, joinLangs(p.TargetLangs), p.WordCount, p.PriceCents, p.Status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the project row for id or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// ListByUser returns all projects owned by userID, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites the mutable columns for the project row. Exactly one row
// must be affected.
func (r *PostgresRepository) Update(ctx context.Context, p *models.Project) error {
	query := `
		UPDATE projects SET
			name = $2, source_lang = $3, target_langs = $4, word_count = $5,
			price_cents = $6, status = $7,
			original_handle = $8, original_name = $9, original_mime = $10, original_size = $11,
			deliverable_handle = $12, deliverable_name = $13, deliverable_mime = $14, deliverable_size = $15,
			updated_at = now()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.SourceLang, joinLangs(p.TargetLangs), p.WordCount,
		p.PriceCents, p.Status,
		p.OriginalHandle, p.OriginalName, p.OriginalMime, p.OriginalSize,
		p.DeliverableHandle, p.DeliverableName, p.DeliverableMime, p.DeliverableSize)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Delete removes the project row for id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var langs string
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.SourceLang, &langs, &p.WordCount, &p.PriceCents, &p.Status,
		&p.OriginalHandle, &p.OriginalName, &p.OriginalMime, &p.OriginalSize,
		&p.DeliverableHandle, &p.DeliverableName, &p.DeliverableMime, &p.DeliverableSize,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.TargetLangs = splitLangs(langs)
	return p, nil
}

func joinLangs(langs []string) string {
	return strings.Join(langs, ",")
}

func splitLangs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
