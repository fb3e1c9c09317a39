package validation

import "testing"

func TestIsValidWhatsAppPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+14155552671", true},
		{"+447911123456", true},
		{"+12", true},
		{"14155552671", false},
		{"+04155552671", false},
		{"+1415555267112345", false},
		{"+1 415 555 2671", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidWhatsAppPhone(tt.phone); got != tt.want {
			t.Errorf("IsValidWhatsAppPhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestStructUsesJSONNames(t *testing.T) {
	type req struct {
		Phone string `json:"phone" validate:"required,whatsapp_phone"`
		Body  string `json:"messageBody" validate:"required,max=5"`
	}

	err := Default().Struct(req{Phone: "+14155552671", Body: "too long"})
	fe, ok := err.(*FieldError)
	if !ok {
		t.Fatalf("expected *FieldError, got %T (%v)", err, err)
	}
	if fe.Field != "messageBody" {
		t.Errorf("field = %q, want messageBody", fe.Field)
	}

	err = Default().Struct(req{Phone: "555", Body: "ok"})
	if err == nil || err.Error() != "Invalid phone number format: 555" {
		t.Errorf("unexpected error: %v", err)
	}

	if err := Default().Struct(req{Phone: "+14155552671", Body: "ok"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProviderCredentialTags(t *testing.T) {
	type creds struct {
		SID  string `json:"accountSid" validate:"required,twilio_sid"`
		From string `json:"whatsappFrom" validate:"required,whatsapp_sender"`
		Hook string `json:"webhookUrl" validate:"omitempty,url"`
	}
	sid := "AC0123456789abcdef0123456789abcdef"

	tests := []struct {
		name string
		in   creds
		want string
	}{
		{"valid", creds{SID: sid, From: "whatsapp:+14155552671"}, ""},
		{"uppercase sid", creds{SID: "AC0123456789ABCDEF0123456789ABCDEF", From: "whatsapp:+14155552671"}, "Invalid Account SID format"},
		{"bare number", creds{SID: sid, From: "+14155552671"}, "Invalid WhatsApp number format (e.g., whatsapp:+1234567890)"},
		{"bad webhook", creds{SID: sid, From: "whatsapp:+14155552671", Hook: "not a url"}, "webhookUrl must be a valid URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Default().Struct(tt.in)
			got := ""
			if err != nil {
				got = err.Error()
			}
			if got != tt.want {
				t.Errorf("error = %q, want %q", got, tt.want)
			}
		})
	}
}
