package dto

import "time"

// MessageType classifies a WhatsApp message for billing and consent rules.
type MessageType string

const (
	MessageTypeTransactional MessageType = "TRANSACTIONAL"
	MessageTypeMarketing     MessageType = "MARKETING"
)

// WhatsAppMessageRequest sends one message.
type WhatsAppMessageRequest struct {
	RecipientPhone string            `json:"recipientPhone" binding:"required" validate:"required,whatsapp_phone"`
	MessageBody    string            `json:"messageBody" binding:"required" validate:"required,max=4096"`
	TemplateName   string            `json:"templateName,omitempty"`
	TemplateParams map[string]string `json:"templateParams,omitempty"`
	Type           MessageType       `json:"type" validate:"required,oneof=TRANSACTIONAL MARKETING"`
}

// Recipient is one bulk message target.
type Recipient struct {
	Phone        string            `json:"phone" validate:"required,whatsapp_phone"`
	Name         string            `json:"name,omitempty"`
	Email        string            `json:"email,omitempty"`
	CustomParams map[string]string `json:"customParams,omitempty"`
}

// BulkWhatsAppRequest sends one body to many recipients.
type BulkWhatsAppRequest struct {
	Recipients   []Recipient `json:"recipients" validate:"required,min=1,dive"`
	MessageBody  string      `json:"messageBody" validate:"required,max=4096"`
	TemplateName string      `json:"templateName,omitempty"`
	ScheduledAt  *time.Time  `json:"scheduledAt,omitempty"`
	Type         MessageType `json:"type" validate:"required,oneof=TRANSACTIONAL MARKETING"`
}

// BulkSendResult is returned by the backend when a bulk job is accepted.
type BulkSendResult struct {
	BulkID   string `json:"bulkId"`
	Status   string `json:"status,omitempty"`
	Total    int    `json:"total,omitempty"`
	Accepted int    `json:"accepted,omitempty"`
}

// BulkMessageProgress reports how far a bulk job has got.
type BulkMessageProgress struct {
	Total                  int    `json:"total"`
	Sent                   int    `json:"sent"`
	Delivered              int    `json:"delivered"`
	Failed                 int    `json:"failed"`
	InProgress             bool   `json:"inProgress"`
	EstimatedTimeRemaining string `json:"estimatedTimeRemaining,omitempty"`
}

// MessageStatus is the delivery state of one message.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "SENT"
	MessageStatusDelivered MessageStatus = "DELIVERED"
	MessageStatusRead      MessageStatus = "READ"
	MessageStatusFailed    MessageStatus = "FAILED"
	MessageStatusCancelled MessageStatus = "CANCELLED"
	MessageStatusScheduled MessageStatus = "SCHEDULED"
)

// WhatsAppMessageStatus is the backend record of a sent message.
type WhatsAppMessageStatus struct {
	ID             string        `json:"id"`
	RecipientPhone string        `json:"recipientPhone"`
	MessageBody    string        `json:"messageBody"`
	Status         MessageStatus `json:"status"`
	SentAt         string        `json:"sentAt,omitempty"`
	DeliveredAt    string        `json:"deliveredAt,omitempty"`
	ReadAt         string        `json:"readAt,omitempty"`
	ErrorMessage   string        `json:"errorMessage,omitempty"`
	TemplateID     string        `json:"templateId,omitempty"`
}

// DailyVolume is the message count of one day.
type DailyVolume struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CostData summarizes messaging spend.
type CostData struct {
	TotalCost      float64 `json:"totalCost"`
	CostPerMessage float64 `json:"costPerMessage"`
	Currency       string  `json:"currency"`
}

// WhatsAppAnalytics is the dashboard summary for a period.
type WhatsAppAnalytics struct {
	TotalMessages     int           `json:"totalMessages"`
	SentMessages      int           `json:"sentMessages"`
	DeliveredMessages int           `json:"deliveredMessages"`
	FailedMessages    int           `json:"failedMessages"`
	ReadMessages      int           `json:"readMessages"`
	DeliveryRate      float64       `json:"deliveryRate"`
	ReadRate          float64       `json:"readRate"`
	PeriodStart       string        `json:"periodStart"`
	PeriodEnd         string        `json:"periodEnd"`
	DailyVolume       []DailyVolume `json:"dailyVolume,omitempty"`
	MaxDailyVolume    int           `json:"maxDailyVolume,omitempty"`
	CostData          *CostData     `json:"costData,omitempty"`
}

// BulkOperation is one entry of the bulk send history.
type BulkOperation struct {
	ID          string        `json:"id"`
	MessageBody string        `json:"messageBody,omitempty"`
	Type        MessageType   `json:"type,omitempty"`
	Status      MessageStatus `json:"status,omitempty"`
	Total       int           `json:"total"`
	Sent        int           `json:"sent"`
	Failed      int           `json:"failed"`
	CreatedAt   string        `json:"createdAt,omitempty"`
	ScheduledAt string        `json:"scheduledAt,omitempty"`
}

// PhoneValidationResult splits numbers into valid and invalid.
type PhoneValidationResult struct {
	Valid       []string          `json:"valid"`
	Invalid     []string          `json:"invalid"`
	Suggestions map[string]string `json:"suggestions,omitempty"`
}

// RetryResult reports how many failed messages were re-queued.
type RetryResult struct {
	RetriedCount int `json:"retriedCount"`
}

// TemplateComponent is one part of a message template.
type TemplateComponent struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Format string `json:"format,omitempty"`
}

// MessageTemplate is a reusable message body.
type MessageTemplate struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Category   string              `json:"category"`
	Language   string              `json:"language"`
	Status     string              `json:"status"`
	Components []TemplateComponent `json:"components"`
}

// ComposeStep is the first wizard step.
type ComposeStep struct {
	MessageBody  string      `json:"messageBody" validate:"required,max=4096"`
	MessageType  MessageType `json:"messageType" validate:"required,oneof=TRANSACTIONAL MARKETING"`
	TemplateName string      `json:"templateName,omitempty"`
}

// RecipientsStep is the second wizard step.
type RecipientsStep struct {
	Recipients []Recipient `json:"recipients" validate:"required,min=1,dive"`
}

// ScheduleStep is the third wizard step.
type ScheduleStep struct {
	IsScheduled bool       `json:"isScheduled"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty" validate:"required_if=IsScheduled true"`
}

// ReviewStep is the confirmation before sending.
type ReviewStep struct {
	ConfirmationChecked bool `json:"confirmationChecked" validate:"eq=true"`
}

// CampaignEstimate is the cost and duration preview shown at review.
type CampaignEstimate struct {
	Recipients       int     `json:"recipients"`
	EstimatedCost    float64 `json:"estimatedCost"`
	EstimatedMinutes int     `json:"estimatedMinutes"`
}

// CampaignView is what the admin UI renders for a campaign.
type CampaignView struct {
	ID           string               `json:"id"`
	Step         string               `json:"step"`
	StepProgress int                  `json:"stepProgress"`
	Status       string               `json:"status"`
	MessageBody  string               `json:"messageBody"`
	MessageType  MessageType          `json:"messageType,omitempty"`
	TemplateName string               `json:"templateName,omitempty"`
	Recipients   []Recipient          `json:"recipients"`
	IsScheduled  bool                 `json:"isScheduled"`
	ScheduledAt  *time.Time           `json:"scheduledAt,omitempty"`
	BulkID       string               `json:"bulkId,omitempty"`
	Progress     *BulkMessageProgress `json:"progress,omitempty"`
	Estimate     CampaignEstimate     `json:"estimate"`
	Preview      string               `json:"preview,omitempty"`
	CreatedBy    string               `json:"createdBy,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// TemplateRequest creates or replaces a stored message template.
type TemplateRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Category string `json:"category" validate:"required,oneof=UTILITY MARKETING AUTHENTICATION"`
	Language string `json:"language,omitempty"`
	Body     string `json:"body" validate:"required,max=4096"`
}

// TemplatePreviewRequest renders a body or stored template for one recipient.
type TemplatePreviewRequest struct {
	TemplateName string    `json:"templateName,omitempty"`
	Body         string    `json:"body,omitempty"`
	Recipient    Recipient `json:"recipient"`
	EventName    string    `json:"eventName,omitempty"`
}

// TemplatePreview is a rendered message.
type TemplatePreview struct {
	Rendered  string   `json:"rendered"`
	Variables []string `json:"variables"`
}
