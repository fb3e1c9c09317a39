package dto

// EventMediaDTO mirrors the backend event-medias resource.
type EventMediaDTO struct {
	ID                                *int64  `json:"id,omitempty"`
	TenantID                          string  `json:"tenantId,omitempty"`
	Title                             string  `json:"title"`
	Description                       *string `json:"description,omitempty"`
	EventMediaType                    string  `json:"eventMediaType"`
	StorageType                       string  `json:"storageType"`
	FileURL                           *string `json:"fileUrl,omitempty"`
	FileDataContentType               *string `json:"fileDataContentType,omitempty"`
	ContentType                       *string `json:"contentType,omitempty"`
	FileSize                          *int64  `json:"fileSize,omitempty"`
	IsPublic                          *bool   `json:"isPublic,omitempty"`
	EventFlyer                        *bool   `json:"eventFlyer,omitempty"`
	IsEventManagementOfficialDocument *bool   `json:"isEventManagementOfficialDocument,omitempty"`
	PreSignedURL                      *string `json:"preSignedUrl,omitempty"`
	PreSignedURLExpiresAt             *string `json:"preSignedUrlExpiresAt,omitempty"`
	AltText                           *string `json:"altText,omitempty"`
	DisplayOrder                      *int    `json:"displayOrder,omitempty"`
	DownloadCount                     *int    `json:"downloadCount,omitempty"`
	IsFeaturedVideo                   *bool   `json:"isFeaturedVideo,omitempty"`
	FeaturedVideoURL                  *string `json:"featuredVideoUrl,omitempty"`
	IsHeroImage                       *bool   `json:"isHeroImage,omitempty"`
	IsActiveHeroImage                 *bool   `json:"isActiveHeroImage,omitempty"`
	IsHomePageHeroImage               bool    `json:"isHomePageHeroImage"`
	IsFeaturedEventImage              bool    `json:"isFeaturedEventImage"`
	IsLiveEventImage                  bool    `json:"isLiveEventImage"`
	EventID                           *int64  `json:"eventId,omitempty"`
	UploadedByID                      *int64  `json:"uploadedById,omitempty"`
	CreatedAt                         string  `json:"createdAt,omitempty"`
	UpdatedAt                         string  `json:"updatedAt,omitempty"`
	StartDisplayingFromDate           *string `json:"startDisplayingFromDate,omitempty"`
}

// MediaListQuery selects a page of media for one event.
type MediaListQuery struct {
	EventID     int64  `form:"-"`
	Page        int    `form:"page"`
	Size        int    `form:"size"`
	Search      string `form:"search"`
	FlyerOnly   bool   `form:"eventFlyer"`
	OfficialDoc bool   `form:"official"`
}

// MediaUploadRequest carries the form fields of a multi-file upload. Files
// are read separately from the multipart form.
type MediaUploadRequest struct {
	EventID                           int64    `form:"eventId"`
	Title                             string   `form:"title"`
	Description                       string   `form:"description"`
	Titles                            []string `form:"titles"`
	Descriptions                      []string `form:"descriptions"`
	EventFlyer                        bool     `form:"eventFlyer"`
	IsEventManagementOfficialDocument bool     `form:"isEventManagementOfficialDocument"`
	IsHeroImage                       bool     `form:"isHeroImage"`
	IsActiveHeroImage                 bool     `form:"isActiveHeroImage"`
	IsFeaturedEventImage              bool     `form:"isFeaturedEventImage"`
	IsLiveEventImage                  bool     `form:"isLiveEventImage"`
	IsHomePageHeroImage               bool     `form:"isHomePageHeroImage"`
	IsPublic                          bool     `form:"isPublic"`
	UploadedByID                      *int64   `form:"upLoadedById"`
	AltText                           string   `form:"altText"`
	DisplayOrder                      *int     `form:"displayOrder"`
	StartDisplayingFromDate           string   `form:"startDisplayingFromDate"`
}

// MediaUpdateRequest is the editable subset of EventMediaDTO.
type MediaUpdateRequest struct {
	Title                   string  `json:"title" binding:"required"`
	Description             *string `json:"description"`
	EventMediaType          string  `json:"eventMediaType"`
	StorageType             string  `json:"storageType"`
	IsPublic                *bool   `json:"isPublic"`
	EventFlyer              *bool   `json:"eventFlyer"`
	IsHeroImage             *bool   `json:"isHeroImage"`
	IsActiveHeroImage       *bool   `json:"isActiveHeroImage"`
	IsHomePageHeroImage     *bool   `json:"isHomePageHeroImage"`
	IsFeaturedEventImage    *bool   `json:"isFeaturedEventImage"`
	IsLiveEventImage        *bool   `json:"isLiveEventImage"`
	AltText                 *string `json:"altText"`
	DisplayOrder            *int    `json:"displayOrder"`
	StartDisplayingFromDate *string `json:"startDisplayingFromDate"`
	CreatedAt               string  `json:"createdAt"`
}
