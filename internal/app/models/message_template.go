package models

import "time"

// MessageTemplate is a reusable WhatsApp body stored per tenant.
type MessageTemplate struct {
	ID        int64     `json:"id" db:"id"`
	TenantID  string    `json:"tenantId" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	Category  string    `json:"category" db:"category"`
	Language  string    `json:"language" db:"language"`
	Body      string    `json:"body" db:"body"`
	Variables []string  `json:"variables" db:"variables"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
