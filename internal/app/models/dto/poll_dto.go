package dto

// UserRef is the id-only nested user object.
type UserRef struct {
	ID int64 `json:"id"`
}

// EventPollDTO mirrors the backend event-polls resource.
type EventPollDTO struct {
	ID                   *int64    `json:"id,omitempty"`
	TenantID             string    `json:"tenantId,omitempty"`
	Title                string    `json:"title"`
	Description          *string   `json:"description,omitempty"`
	IsActive             *bool     `json:"isActive,omitempty"`
	StartDate            string    `json:"startDate"`
	EndDate              *string   `json:"endDate,omitempty"`
	MaxResponsesPerUser  *int      `json:"maxResponsesPerUser,omitempty"`
	AllowMultipleChoices *bool     `json:"allowMultipleChoices,omitempty"`
	IsAnonymous          *bool     `json:"isAnonymous,omitempty"`
	CreatedAt            string    `json:"createdAt,omitempty"`
	UpdatedAt            string    `json:"updatedAt,omitempty"`
	Event                *EventRef `json:"event,omitempty"`
	CreatedBy            *UserRef  `json:"createdBy,omitempty"`
}

// PollID returns the poll identifier or 0 when unsaved.
func (p EventPollDTO) PollID() int64 {
	if p.ID == nil {
		return 0
	}
	return *p.ID
}

// Active reports the isActive flag, treating a missing flag as false.
func (p EventPollDTO) Active() bool {
	return p.IsActive != nil && *p.IsActive
}

// EventPollOptionDTO mirrors the backend event-poll-options resource.
type EventPollOptionDTO struct {
	ID           *int64        `json:"id,omitempty"`
	TenantID     string        `json:"tenantId,omitempty"`
	OptionText   string        `json:"optionText"`
	DisplayOrder *int          `json:"displayOrder,omitempty"`
	IsActive     *bool         `json:"isActive,omitempty"`
	CreatedAt    string        `json:"createdAt,omitempty"`
	UpdatedAt    string        `json:"updatedAt,omitempty"`
	Poll         *EventPollDTO `json:"poll,omitempty"`
}

// OptionID returns the option identifier or 0 when unsaved.
func (o EventPollOptionDTO) OptionID() int64 {
	if o.ID == nil {
		return 0
	}
	return *o.ID
}

// EventPollResponseDTO mirrors the backend event-poll-responses resource.
type EventPollResponseDTO struct {
	ID            *int64              `json:"id,omitempty"`
	TenantID      string              `json:"tenantId,omitempty"`
	Comment       *string             `json:"comment,omitempty"`
	ResponseValue *string             `json:"responseValue,omitempty"`
	IsAnonymous   *bool               `json:"isAnonymous,omitempty"`
	CreatedAt     string              `json:"createdAt,omitempty"`
	UpdatedAt     string              `json:"updatedAt,omitempty"`
	PollID        *int64              `json:"pollId,omitempty"`
	PollOptionID  *int64              `json:"pollOptionId,omitempty"`
	UserID        *int64              `json:"userId,omitempty"`
	Poll          *EventPollDTO       `json:"poll,omitempty"`
	PollOption    *EventPollOptionDTO `json:"pollOption,omitempty"`
	User          *UserRef            `json:"user,omitempty"`
}

// OptionRef resolves the option id from either the flat or nested field.
func (r EventPollResponseDTO) OptionRef() int64 {
	if r.PollOptionID != nil {
		return *r.PollOptionID
	}
	if r.PollOption != nil && r.PollOption.ID != nil {
		return *r.PollOption.ID
	}
	return 0
}

// UserRefID resolves the voter id from either the flat or nested field.
func (r EventPollResponseDTO) UserRefID() int64 {
	if r.UserID != nil {
		return *r.UserID
	}
	if r.User != nil {
		return r.User.ID
	}
	return 0
}

// PollRequest is the create/update payload for a poll.
type PollRequest struct {
	Title                string              `json:"title"`
	Description          *string             `json:"description"`
	IsActive             *bool               `json:"isActive"`
	StartDate            string              `json:"startDate"`
	EndDate              *string             `json:"endDate"`
	MaxResponsesPerUser  *int                `json:"maxResponsesPerUser"`
	AllowMultipleChoices *bool               `json:"allowMultipleChoices"`
	IsAnonymous          *bool               `json:"isAnonymous"`
	EventID              *int64              `json:"eventId"`
	CreatedByID          *int64              `json:"createdById"`
	Options              []PollOptionRequest `json:"options"`
}

// PollOptionRequest is the create/update payload for an option.
type PollOptionRequest struct {
	ID           *int64 `json:"id"`
	OptionText   string `json:"optionText" binding:"required"`
	DisplayOrder *int   `json:"displayOrder"`
	IsActive     *bool  `json:"isActive"`
}

// PollResponseRequest records one vote.
type PollResponseRequest struct {
	PollID        int64   `json:"pollId" binding:"required,min=1"`
	PollOptionID  int64   `json:"pollOptionId" binding:"required,min=1"`
	UserID        int64   `json:"userId" binding:"required,min=1"`
	Comment       *string `json:"comment"`
	ResponseValue *string `json:"responseValue" binding:"omitempty,max=1000"`
	IsAnonymous   bool    `json:"isAnonymous"`
}

// PollWithOptions bundles a poll with its ordered options.
type PollWithOptions struct {
	Poll    EventPollDTO         `json:"poll"`
	Options []EventPollOptionDTO `json:"options"`
}

// OptionTally is the result row for one option.
type OptionTally struct {
	OptionID   int64   `json:"optionId"`
	OptionText string  `json:"optionText"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Voters     int     `json:"voters"`
}

// HourCount is the number of responses received in one hour of the day.
type HourCount struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// PollResults aggregates the responses of one poll.
type PollResults struct {
	PollID                  int64         `json:"pollId"`
	TotalResponses          int           `json:"totalResponses"`
	UniqueVoters            int           `json:"uniqueVoters"`
	AverageResponsesPerUser float64       `json:"averageResponsesPerUser"`
	Options                 []OptionTally `json:"options"`
	ResponsesPerHour        []HourCount   `json:"responsesPerHour"`
	PeakHour                string        `json:"peakHour"`
	TotalComments           int           `json:"totalComments"`
	CommentRate             float64       `json:"commentRate"`
}

// PollStatus is the display state derived from flags and dates.
type PollStatus string

const (
	PollStatusInactive  PollStatus = "Inactive"
	PollStatusScheduled PollStatus = "Scheduled"
	PollStatusEnded     PollStatus = "Ended"
	PollStatusActive    PollStatus = "Active"
)

// PollChangeType names the next automatic transition of a poll.
type PollChangeType string

const (
	PollChangeActivate   PollChangeType = "activate"
	PollChangeDeactivate PollChangeType = "deactivate"
	PollChangeNone       PollChangeType = "none"
)

// PollChange describes an upcoming scheduler transition.
type PollChange struct {
	Type    PollChangeType `json:"type"`
	Minutes int            `json:"minutes"`
	At      string         `json:"at,omitempty"`
	Message string         `json:"message"`
}

// UpcomingPollChange pairs a poll with its next transition.
type UpcomingPollChange struct {
	Poll   EventPollDTO `json:"poll"`
	Change PollChange   `json:"change"`
}

// SchedulerRunResult summarizes one scheduler pass.
type SchedulerRunResult struct {
	Checked     int `json:"checked"`
	Activated   int `json:"activated"`
	Deactivated int `json:"deactivated"`
	Failed      int `json:"failed"`
}
