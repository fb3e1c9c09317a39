package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mosc/eventadmin/internal/app/models"
	"github.com/mosc/eventadmin/internal/pkg/logger"
)

// TemplateStore persists per-tenant message templates.
type TemplateStore interface {
	List(ctx context.Context, tenantID string) ([]*models.MessageTemplate, error)
	Upsert(ctx context.Context, t *models.MessageTemplate) error
}

// TemplateRepository is the PostgreSQL TemplateStore.
type TemplateRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List returns the tenant's templates ordered by name.
func (r *TemplateRepository) List(ctx context.Context, tenantID string) ([]*models.MessageTemplate, error) {
	sql, args, err := r.sb.Select("id", "tenant_id", "name", "category", "language", "body", "variables", "created_at").
		From("message_templates").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list templates SQL")
		return nil, fmt.Errorf("failed to build list templates query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list templates query")
		return nil, fmt.Errorf("error querying templates: %w", err)
	}
	defer rows.Close()

	templates := []*models.MessageTemplate{}
	for rows.Next() {
		t := &models.MessageTemplate{}
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Name, &t.Category, &t.Language, &t.Body, &t.Variables, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning template row: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template rows: %w", err)
	}
	return templates, nil
}

// Upsert inserts a template or replaces the one with the same tenant and name.
func (r *TemplateRepository) Upsert(ctx context.Context, t *models.MessageTemplate) error {
	variables := t.Variables
	if variables == nil {
		variables = []string{}
	}
	sql, args, err := r.sb.Insert("message_templates").
		Columns("tenant_id", "name", "category", "language", "body", "variables").
		Values(t.TenantID, t.Name, t.Category, t.Language, t.Body, variables).
		Suffix(`ON CONFLICT (tenant_id, name) DO UPDATE
			SET category = EXCLUDED.category, language = EXCLUDED.language,
			    body = EXCLUDED.body, variables = EXCLUDED.variables
			RETURNING id, created_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert template query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.CreatedAt); err != nil {
		logger.Error().Err(err).Str("name", t.Name).Msg("Error upserting template")
		return fmt.Errorf("error upserting template: %w", err)
	}
	return nil
}
