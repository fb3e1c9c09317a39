package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds the local store. The admin data itself lives in the
// backend; only campaigns and templates are kept here.
type Repositories struct {
	Campaigns CampaignStore
	Templates TemplateStore
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Campaigns: NewCampaignRepository(db),
		Templates: NewTemplateRepository(db),
	}
}
