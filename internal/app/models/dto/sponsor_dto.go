package dto

// EventSponsorDTO mirrors the backend event-sponsors resource.
type EventSponsorDTO struct {
	ID              *int64  `json:"id,omitempty"`
	TenantID        string  `json:"tenantId,omitempty"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	CompanyName     *string `json:"companyName,omitempty"`
	Tagline         *string `json:"tagline,omitempty"`
	Description     *string `json:"description,omitempty"`
	WebsiteURL      *string `json:"websiteUrl,omitempty"`
	ContactEmail    *string `json:"contactEmail,omitempty"`
	ContactPhone    *string `json:"contactPhone,omitempty"`
	LogoURL         *string `json:"logoUrl,omitempty"`
	HeroImageURL    *string `json:"heroImageUrl,omitempty"`
	BannerImageURL  *string `json:"bannerImageUrl,omitempty"`
	IsActive        bool    `json:"isActive"`
	PriorityRanking int     `json:"priorityRanking"`
	FacebookURL     *string `json:"facebookUrl,omitempty"`
	TwitterURL      *string `json:"twitterUrl,omitempty"`
	LinkedinURL     *string `json:"linkedinUrl,omitempty"`
	InstagramURL    *string `json:"instagramUrl,omitempty"`
	CreatedAt       string  `json:"createdAt,omitempty"`
	UpdatedAt       string  `json:"updatedAt,omitempty"`
}

// SponsorID returns the sponsor identifier or 0 when unsaved.
func (s EventSponsorDTO) SponsorID() int64 {
	if s.ID == nil {
		return 0
	}
	return *s.ID
}

// SponsorRequest is the create/update payload accepted from the admin UI.
// IsActive and PriorityRanking are optional so defaults can be applied.
type SponsorRequest struct {
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	CompanyName     string  `json:"companyName"`
	Tagline         string  `json:"tagline"`
	Description     string  `json:"description"`
	WebsiteURL      string  `json:"websiteUrl"`
	ContactEmail    string  `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone    string  `json:"contactPhone"`
	LogoURL         string  `json:"logoUrl"`
	HeroImageURL    string  `json:"heroImageUrl"`
	BannerImageURL  string  `json:"bannerImageUrl"`
	IsActive        *bool   `json:"isActive"`
	PriorityRanking *int    `json:"priorityRanking"`
	FacebookURL     string  `json:"facebookUrl"`
	TwitterURL      string  `json:"twitterUrl"`
	LinkedinURL     string  `json:"linkedinUrl"`
	InstagramURL    string  `json:"instagramUrl"`
	CreatedAt       *string `json:"createdAt"`
}

// EventRef is the id-only nested object the backend accepts for relations.
type EventRef struct {
	ID int64 `json:"id"`
}

// EventSponsorJoinDTO links a sponsor to an event.
type EventSponsorJoinDTO struct {
	ID        *int64           `json:"id,omitempty"`
	TenantID  string           `json:"tenantId,omitempty"`
	CreatedAt string           `json:"createdAt,omitempty"`
	Event     *EventRef        `json:"event,omitempty"`
	Sponsor   *EventSponsorDTO `json:"sponsor,omitempty"`
}

// SponsorJoinRequest assigns a sponsor to an event.
type SponsorJoinRequest struct {
	EventID   int64 `json:"eventId" binding:"required,min=1"`
	SponsorID int64 `json:"sponsorId" binding:"required,min=1"`
}

// AvailableSponsorsResult lists sponsors not yet assigned to an event.
type AvailableSponsorsResult struct {
	Content       []EventSponsorDTO `json:"content"`
	TotalElements int               `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
	AssignedCount int               `json:"assignedCount"`
	TotalSponsors int               `json:"totalSponsors"`
}
