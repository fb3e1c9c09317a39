package dto

// TwilioCredentials are the tenant's WhatsApp provider credentials.
type TwilioCredentials struct {
	AccountSID   string `json:"accountSid" validate:"required,twilio_sid"`
	AuthToken    string `json:"authToken" validate:"required,min=32"`
	WhatsAppFrom string `json:"whatsappFrom" validate:"required,whatsapp_sender"`
	WebhookURL   string `json:"webhookUrl,omitempty" validate:"omitempty,url"`
	WebhookToken string `json:"webhookToken,omitempty"`
}

// WhatsAppSettings is the whatsappSettings block of the tenant settings.
type WhatsAppSettings struct {
	IsEnabled         bool               `json:"isEnabled"`
	WebhookURL        string             `json:"webhookUrl,omitempty"`
	WebhookToken      string             `json:"webhookToken,omitempty"`
	TwilioCredentials *TwilioCredentials `json:"twilioCredentials,omitempty"`
	UpdatedAt         string             `json:"updatedAt,omitempty"`
}

// TenantSettings is the subset of the backend tenant settings the admin
// WhatsApp page reads.
type TenantSettings struct {
	ID                        *int64            `json:"id,omitempty"`
	TenantID                  string            `json:"tenantId"`
	EnableWhatsappIntegration bool              `json:"enableWhatsappIntegration"`
	EnableEmailMarketing      bool              `json:"enableEmailMarketing"`
	WhatsAppSettings          *WhatsAppSettings `json:"whatsappSettings,omitempty"`
	UpdatedAt                 string            `json:"updatedAt,omitempty"`
}

// WhatsAppSettingsUpdate changes the integration toggle or webhook. Nil
// fields are left as they are.
type WhatsAppSettingsUpdate struct {
	IsEnabled    *bool   `json:"isEnabled,omitempty"`
	WebhookURL   *string `json:"webhookUrl,omitempty" validate:"omitempty,url"`
	WebhookToken *string `json:"webhookToken,omitempty"`
}

// ConnectionTestDetails breaks a connection test down by provider part.
type ConnectionTestDetails struct {
	AccountStatus  string `json:"accountStatus"`
	WhatsAppStatus string `json:"whatsappStatus"`
	WebhookStatus  string `json:"webhookStatus"`
}

// ConnectionTestResult is the outcome of testing provider credentials.
type ConnectionTestResult struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message"`
	Timestamp string                 `json:"timestamp"`
	Details   *ConnectionTestDetails `json:"details,omitempty"`
}
