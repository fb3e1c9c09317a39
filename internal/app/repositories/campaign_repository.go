package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mosc/eventadmin/internal/app/models"
	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/dberrors"
	"github.com/mosc/eventadmin/internal/pkg/logger"
)

// CampaignFilter narrows a campaign listing.
type CampaignFilter struct {
	TenantID string
	Statuses []models.CampaignStatus
	Page     int
	Size     int
}

// CampaignStore persists wizard drafts and their sending state.
type CampaignStore interface {
	Create(ctx context.Context, c *models.Campaign) error
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	List(ctx context.Context, f CampaignFilter) ([]*models.Campaign, int64, error)
	Update(ctx context.Context, c *models.Campaign) error
	UpdateProgress(ctx context.Context, id string, status models.CampaignStatus, progress *dto.BulkMessageProgress, completedAt *time.Time) error
	Delete(ctx context.Context, id string) error
	AddEvent(ctx context.Context, e *models.CampaignEvent) error
	ListEvents(ctx context.Context, campaignID string) ([]*models.CampaignEvent, error)
}

var campaignColumns = []string{
	"id", "tenant_id", "step", "status", "message_body", "message_type", "template_name",
	"recipients", "is_scheduled", "scheduled_at", "bulk_id", "progress", "created_by",
	"created_at", "updated_at", "submitted_at", "completed_at",
}

// CampaignRepository is the PostgreSQL CampaignStore.
type CampaignRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(db *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func marshalRecipients(r []dto.Recipient) ([]byte, error) {
	if r == nil {
		r = []dto.Recipient{}
	}
	return json.Marshal(r)
}

func marshalProgress(p *dto.BulkMessageProgress) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Create inserts a campaign. ID and timestamps must already be set.
func (r *CampaignRepository) Create(ctx context.Context, c *models.Campaign) error {
	recipients, err := marshalRecipients(c.Recipients)
	if err != nil {
		return fmt.Errorf("failed to encode recipients: %w", err)
	}
	progress, err := marshalProgress(c.Progress)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	sql, args, err := r.sb.Insert("campaigns").
		Columns(campaignColumns...).
		Values(c.ID, c.TenantID, c.Step, c.Status, c.MessageBody, c.MessageType, c.TemplateName,
			recipients, c.IsScheduled, c.ScheduledAt, c.BulkID, progress, c.CreatedBy,
			c.CreatedAt, c.UpdatedAt, c.SubmittedAt, c.CompletedAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create campaign SQL")
		return fmt.Errorf("failed to build create campaign query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "campaigns_pkey") {
			return apperrors.NewConflictError("campaign already exists")
		}
		logger.Error().Err(err).Str("campaignID", c.ID).Msg("Error executing create campaign query")
		return fmt.Errorf("error creating campaign: %w", err)
	}
	return nil
}

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	c := &models.Campaign{}
	var recipients, progress []byte
	err := row.Scan(&c.ID, &c.TenantID, &c.Step, &c.Status, &c.MessageBody, &c.MessageType, &c.TemplateName,
		&recipients, &c.IsScheduled, &c.ScheduledAt, &c.BulkID, &progress, &c.CreatedBy,
		&c.CreatedAt, &c.UpdatedAt, &c.SubmittedAt, &c.CompletedAt)
	if err != nil {
		return nil, err
	}
	if len(recipients) > 0 {
		if err := json.Unmarshal(recipients, &c.Recipients); err != nil {
			return nil, fmt.Errorf("failed to decode recipients: %w", err)
		}
	}
	if len(progress) > 0 {
		c.Progress = &dto.BulkMessageProgress{}
		if err := json.Unmarshal(progress, c.Progress); err != nil {
			return nil, fmt.Errorf("failed to decode progress: %w", err)
		}
	}
	return c, nil
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	sql, args, err := r.sb.Select(campaignColumns...).
		From("campaigns").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get campaign SQL")
		return nil, fmt.Errorf("failed to build get campaign query: %w", err)
	}

	c, err := scanCampaign(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCampaignNotFound
		}
		logger.Error().Err(err).Str("campaignID", id).Msg("Error scanning campaign row")
		return nil, fmt.Errorf("error getting campaign by ID: %w", err)
	}
	return c, nil
}

// List returns one page of a tenant's campaigns, newest first, and the total.
func (r *CampaignRepository) List(ctx context.Context, f CampaignFilter) ([]*models.Campaign, int64, error) {
	where := squirrel.And{}
	if f.TenantID != "" {
		where = append(where, squirrel.Eq{"tenant_id": f.TenantID})
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, squirrel.Eq{"status": statuses})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("campaigns").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count campaigns query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting campaigns")
		return nil, 0, fmt.Errorf("error counting campaigns: %w", err)
	}

	q := r.sb.Select(campaignColumns...).
		From("campaigns").
		Where(where).
		OrderBy("created_at DESC")
	if f.Size > 0 {
		q = q.Limit(uint64(f.Size)).Offset(uint64(f.Page * f.Size))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list campaigns query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list campaigns query")
		return nil, 0, fmt.Errorf("error querying campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*models.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning campaign row: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating campaign rows: %w", err)
	}
	return campaigns, total, nil
}

// Update writes the wizard fields and sending state of a campaign.
func (r *CampaignRepository) Update(ctx context.Context, c *models.Campaign) error {
	recipients, err := marshalRecipients(c.Recipients)
	if err != nil {
		return fmt.Errorf("failed to encode recipients: %w", err)
	}
	progress, err := marshalProgress(c.Progress)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	sql, args, err := r.sb.Update("campaigns").
		SetMap(map[string]interface{}{
			"step":          c.Step,
			"status":        c.Status,
			"message_body":  c.MessageBody,
			"message_type":  c.MessageType,
			"template_name": c.TemplateName,
			"recipients":    recipients,
			"is_scheduled":  c.IsScheduled,
			"scheduled_at":  c.ScheduledAt,
			"bulk_id":       c.BulkID,
			"progress":      progress,
			"updated_at":    c.UpdatedAt,
			"submitted_at":  c.SubmittedAt,
			"completed_at":  c.CompletedAt,
		}).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update campaign SQL")
		return fmt.Errorf("failed to build update campaign query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("campaignID", c.ID).Msg("Error executing update campaign query")
		return fmt.Errorf("error updating campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCampaignNotFound
	}
	return nil
}

// UpdateProgress stores a progress snapshot and the resulting status.
func (r *CampaignRepository) UpdateProgress(ctx context.Context, id string, status models.CampaignStatus, progress *dto.BulkMessageProgress, completedAt *time.Time) error {
	encoded, err := marshalProgress(progress)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	sql, args, err := r.sb.Update("campaigns").
		Set("status", status).
		Set("progress", encoded).
		Set("completed_at", completedAt).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update progress query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("campaignID", id).Msg("Error updating campaign progress")
		return fmt.Errorf("error updating campaign progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCampaignNotFound
	}
	return nil
}

// Delete removes a campaign and, through the foreign key, its events.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete("campaigns").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete campaign query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("campaignID", id).Msg("Error deleting campaign")
		return fmt.Errorf("error deleting campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCampaignNotFound
	}
	return nil
}

// AddEvent appends to the campaign's event log.
func (r *CampaignRepository) AddEvent(ctx context.Context, e *models.CampaignEvent) error {
	var payload interface{}
	if len(e.Payload) > 0 {
		payload = e.Payload
	}
	sql, args, err := r.sb.Insert("campaign_events").
		Columns("campaign_id", "event_type", "payload", "created_at").
		Values(e.CampaignID, e.Type, payload, e.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add campaign event query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.ID); err != nil {
		logger.Error().Err(err).Str("campaignID", e.CampaignID).Str("type", e.Type).Msg("Error recording campaign event")
		return fmt.Errorf("error adding campaign event: %w", err)
	}
	return nil
}

// ListEvents returns a campaign's events in the order they happened.
func (r *CampaignRepository) ListEvents(ctx context.Context, campaignID string) ([]*models.CampaignEvent, error) {
	sql, args, err := r.sb.Select("id", "campaign_id", "event_type", "payload", "created_at").
		From("campaign_events").
		Where(squirrel.Eq{"campaign_id": campaignID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list campaign events query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("campaignID", campaignID).Msg("Error listing campaign events")
		return nil, fmt.Errorf("error querying campaign events: %w", err)
	}
	defer rows.Close()

	events := []*models.CampaignEvent{}
	for rows.Next() {
		e := &models.CampaignEvent{}
		if err := rows.Scan(&e.ID, &e.CampaignID, &e.Type, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning campaign event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign event rows: %w", err)
	}
	return events, nil
}
