package dto

// UserProfileDTO mirrors the backend user-profiles resource.
type UserProfileDTO struct {
	ID                           int64   `json:"id"`
	TenantID                     string  `json:"tenantId,omitempty"`
	UserID                       string  `json:"userId"`
	FirstName                    *string `json:"firstName,omitempty"`
	LastName                     *string `json:"lastName,omitempty"`
	Email                        *string `json:"email,omitempty"`
	Phone                        *string `json:"phone,omitempty"`
	AddressLine1                 *string `json:"addressLine1,omitempty"`
	AddressLine2                 *string `json:"addressLine2,omitempty"`
	City                         *string `json:"city,omitempty"`
	State                        *string `json:"state,omitempty"`
	ZipCode                      *string `json:"zipCode,omitempty"`
	Country                      *string `json:"country,omitempty"`
	Notes                        *string `json:"notes,omitempty"`
	FamilyName                   *string `json:"familyName,omitempty"`
	CityTown                     *string `json:"cityTown,omitempty"`
	District                     *string `json:"district,omitempty"`
	EducationalInstitution       *string `json:"educationalInstitution,omitempty"`
	ProfileImageURL              *string `json:"profileImageUrl,omitempty"`
	IsEmailSubscribed            *bool   `json:"isEmailSubscribed,omitempty"`
	EmailSubscriptionToken       *string `json:"emailSubscriptionToken,omitempty"`
	IsEmailSubscriptionTokenUsed *bool   `json:"isEmailSubscriptionTokenUsed,omitempty"`
	UserStatus                   *string `json:"userStatus,omitempty"`
	UserRole                     *string `json:"userRole,omitempty"`
	ReviewedByAdminAt            *string `json:"reviewedByAdminAt,omitempty"`
	ReviewedByAdminID            *int64  `json:"reviewedByAdminId,omitempty"`
	CreatedAt                    string  `json:"createdAt,omitempty"`
	UpdatedAt                    string  `json:"updatedAt,omitempty"`
}

// UserProfileUpdate is the merge-patch body for a profile. Only non-nil
// fields are sent.
type UserProfileUpdate struct {
	FirstName  *string `json:"firstName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	Country    *string `json:"country,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	UserStatus *string `json:"userStatus,omitempty" binding:"omitempty,oneof=PENDING_APPROVAL APPROVED REJECTED ACTIVE INACTIVE"`
	UserRole   *string `json:"userRole,omitempty" binding:"omitempty,oneof=MEMBER ADMIN SUPER_ADMIN ORGANIZER VOLUNTEER"`
}

// SessionUser is the admin identity carried in the session token.
type SessionUser struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// SignInRequest is posted by the sign-in form.
type SignInRequest struct {
	Email       string `form:"email" json:"email" binding:"required,email"`
	Password    string `form:"password" json:"password" binding:"required"`
	RedirectURL string `form:"redirect_url" json:"redirectUrl"`
}
