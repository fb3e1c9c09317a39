package models

import (
	"time"

	"github.com/mosc/eventadmin/internal/app/models/dto"
)

// CampaignStep is a stage of the bulk messaging wizard.
type CampaignStep string

const (
	StepCompose    CampaignStep = "compose"
	StepRecipients CampaignStep = "recipients"
	StepSchedule   CampaignStep = "schedule"
	StepReview     CampaignStep = "review"
	StepSending    CampaignStep = "sending"
	StepComplete   CampaignStep = "complete"
)

// CampaignSteps lists the wizard steps in order.
var CampaignSteps = []CampaignStep{
	StepCompose,
	StepRecipients,
	StepSchedule,
	StepReview,
	StepSending,
	StepComplete,
}

// Index returns the position of the step, or -1 for an unknown step.
func (s CampaignStep) Index() int {
	for i, step := range CampaignSteps {
		if step == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known step.
func (s CampaignStep) Valid() bool {
	return s.Index() >= 0
}

// CampaignStatus is the sending state of a campaign.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "DRAFT"
	CampaignStatusScheduled CampaignStatus = "SCHEDULED"
	CampaignStatusSending   CampaignStatus = "SENDING"
	CampaignStatusCompleted CampaignStatus = "COMPLETED"
	CampaignStatusFailed    CampaignStatus = "FAILED"
	CampaignStatusCancelled CampaignStatus = "CANCELLED"
)

// Terminal reports whether no further progress is expected.
func (s CampaignStatus) Terminal() bool {
	switch s {
	case CampaignStatusCompleted, CampaignStatusFailed, CampaignStatusCancelled:
		return true
	}
	return false
}

// Campaign is a locally stored bulk WhatsApp wizard draft and its sending state.
type Campaign struct {
	ID           string                   `json:"id" db:"id"`
	TenantID     string                   `json:"tenantId" db:"tenant_id"`
	Step         CampaignStep             `json:"step" db:"step"`
	Status       CampaignStatus           `json:"status" db:"status"`
	MessageBody  string                   `json:"messageBody" db:"message_body"`
	MessageType  dto.MessageType          `json:"messageType" db:"message_type"`
	TemplateName *string                  `json:"templateName,omitempty" db:"template_name"`
	Recipients   []dto.Recipient          `json:"recipients" db:"recipients"`
	IsScheduled  bool                     `json:"isScheduled" db:"is_scheduled"`
	ScheduledAt  *time.Time               `json:"scheduledAt,omitempty" db:"scheduled_at"`
	BulkID       *string                  `json:"bulkId,omitempty" db:"bulk_id"`
	Progress     *dto.BulkMessageProgress `json:"progress,omitempty" db:"progress"`
	CreatedBy    string                   `json:"createdBy" db:"created_by"`
	CreatedAt    time.Time                `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time                `json:"updatedAt" db:"updated_at"`
	SubmittedAt  *time.Time               `json:"submittedAt,omitempty" db:"submitted_at"`
	CompletedAt  *time.Time               `json:"completedAt,omitempty" db:"completed_at"`
}

// CampaignEvent records one thing that happened to a campaign.
type CampaignEvent struct {
	ID         int64     `json:"id" db:"id"`
	CampaignID string    `json:"campaignId" db:"campaign_id"`
	Type       string    `json:"type" db:"event_type"`
	Payload    []byte    `json:"payload,omitempty" db:"payload"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Campaign event types
const (
	CampaignEventCreated   = "created"
	CampaignEventStep      = "step"
	CampaignEventSubmitted = "submitted"
	CampaignEventProgress  = "progress"
	CampaignEventCompleted = "completed"
	CampaignEventCancelled = "cancelled"
	CampaignEventFailed    = "failed"
	CampaignEventTimeout   = "monitor_timeout"
)
