package dto

// ExecutiveCommitteeMemberDTO mirrors the executive-committee-team-members resource.
type ExecutiveCommitteeMemberDTO struct {
	ID              *int64  `json:"id"`
	FirstName       string  `json:"firstName" binding:"required"`
	LastName        string  `json:"lastName" binding:"required"`
	Title           string  `json:"title" binding:"required"`
	Designation     *string `json:"designation,omitempty"`
	Bio             *string `json:"bio,omitempty"`
	Email           *string `json:"email,omitempty" binding:"omitempty,email"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
	Expertise       *string `json:"expertise,omitempty"`
	ImageBackground *string `json:"imageBackground,omitempty"`
	ImageStyle      *string `json:"imageStyle,omitempty"`
	Department      *string `json:"department,omitempty"`
	JoinDate        *string `json:"joinDate,omitempty"`
	IsActive        *bool   `json:"isActive,omitempty"`
	LinkedinURL     *string `json:"linkedinUrl,omitempty"`
	TwitterURL      *string `json:"twitterUrl,omitempty"`
	PriorityOrder   *int    `json:"priorityOrder,omitempty"`
	WebsiteURL      *string `json:"websiteUrl,omitempty"`
}

// ProfileImageRequest sets a member's image to an already uploaded URL.
type ProfileImageRequest struct {
	ProfileImageURL string `json:"profileImageUrl" binding:"required,url"`
}

// ProfileImageResult is returned after an image upload.
type ProfileImageResult struct {
	MemberID        int64  `json:"memberId"`
	ProfileImageURL string `json:"profileImageUrl"`
}
