package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mosc/eventadmin/internal/app/models"
	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
)

// MemoryCampaignStore keeps campaigns in process memory. It backs the
// campaign wizard when no database is configured, and the tests.
type MemoryCampaignStore struct {
	mu        sync.RWMutex
	campaigns map[string]*models.Campaign
	events    map[string][]*models.CampaignEvent
	nextEvent int64
}

// NewMemoryCampaignStore creates an empty store.
func NewMemoryCampaignStore() *MemoryCampaignStore {
	return &MemoryCampaignStore{
		campaigns: make(map[string]*models.Campaign),
		events:    make(map[string][]*models.CampaignEvent),
	}
}

func cloneCampaign(c *models.Campaign) *models.Campaign {
	cp := *c
	cp.Recipients = append([]dto.Recipient(nil), c.Recipients...)
	if c.Progress != nil {
		p := *c.Progress
		cp.Progress = &p
	}
	return &cp
}

func (s *MemoryCampaignStore) Create(_ context.Context, c *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[c.ID]; ok {
		return apperrors.NewConflictError("campaign already exists")
	}
	s.campaigns[c.ID] = cloneCampaign(c)
	return nil
}

func (s *MemoryCampaignStore) GetByID(_ context.Context, id string) (*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, apperrors.ErrCampaignNotFound
	}
	return cloneCampaign(c), nil
}

func (s *MemoryCampaignStore) List(_ context.Context, f CampaignFilter) ([]*models.Campaign, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[models.CampaignStatus]bool, len(f.Statuses))
	for _, st := range f.Statuses {
		wanted[st] = true
	}
	var matched []*models.Campaign
	for _, c := range s.campaigns {
		if f.TenantID != "" && c.TenantID != f.TenantID {
			continue
		}
		if len(wanted) > 0 && !wanted[c.Status] {
			continue
		}
		matched = append(matched, cloneCampaign(c))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if f.Size > 0 {
		start := f.Page * f.Size
		if start > len(matched) {
			start = len(matched)
		}
		end := start + f.Size
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	if matched == nil {
		matched = []*models.Campaign{}
	}
	return matched, total, nil
}

func (s *MemoryCampaignStore) Update(_ context.Context, c *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[c.ID]; !ok {
		return apperrors.ErrCampaignNotFound
	}
	s.campaigns[c.ID] = cloneCampaign(c)
	return nil
}

func (s *MemoryCampaignStore) UpdateProgress(_ context.Context, id string, status models.CampaignStatus, progress *dto.BulkMessageProgress, completedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return apperrors.ErrCampaignNotFound
	}
	c.Status = status
	if progress != nil {
		p := *progress
		c.Progress = &p
	}
	c.CompletedAt = completedAt
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryCampaignStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[id]; !ok {
		return apperrors.ErrCampaignNotFound
	}
	delete(s.campaigns, id)
	delete(s.events, id)
	return nil
}

func (s *MemoryCampaignStore) AddEvent(_ context.Context, e *models.CampaignEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEvent++
	e.ID = s.nextEvent
	cp := *e
	s.events[e.CampaignID] = append(s.events[e.CampaignID], &cp)
	return nil
}

func (s *MemoryCampaignStore) ListEvents(_ context.Context, campaignID string) ([]*models.CampaignEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.CampaignEvent, 0, len(s.events[campaignID]))
	for _, e := range s.events[campaignID] {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// MemoryTemplateStore keeps templates in process memory.
type MemoryTemplateStore struct {
	mu        sync.RWMutex
	templates map[string]*models.MessageTemplate
	nextID    int64
}

// NewMemoryTemplateStore creates an empty store.
func NewMemoryTemplateStore() *MemoryTemplateStore {
	return &MemoryTemplateStore{templates: make(map[string]*models.MessageTemplate)}
}

func (s *MemoryTemplateStore) List(_ context.Context, tenantID string) ([]*models.MessageTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.MessageTemplate{}
	for _, t := range s.templates {
		if t.TenantID == tenantID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryTemplateStore) Upsert(_ context.Context, t *models.MessageTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := t.TenantID + "\x00" + t.Name
	if existing, ok := s.templates[key]; ok {
		t.ID = existing.ID
		t.CreatedAt = existing.CreatedAt
	} else {
		s.nextID++
		t.ID = s.nextID
		t.CreatedAt = time.Now().UTC()
	}
	cp := *t
	s.templates[key] = &cp
	return nil
}

// NewMemoryRepositories returns a Repositories backed by process memory.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Campaigns: NewMemoryCampaignStore(),
		Templates: NewMemoryTemplateStore(),
	}
}
