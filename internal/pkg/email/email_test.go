package email

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseRecipients(t *testing.T) {
	got := ParseRecipients(" a@example.org, ,b@example.org ")
	if len(got) != 2 || got[0] != "a@example.org" || got[1] != "b@example.org" {
		t.Errorf("ParseRecipients = %v", got)
	}
	if ParseRecipients("") != nil {
		t.Error("expected nil for empty list")
	}
}

func TestRenderSummary(t *testing.T) {
	svc := NewEmailService(Config{AppURL: "https://admin.example.org/"}, zerolog.Nop()).(*EmailServiceImpl)
	start := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	subject, body, err := svc.RenderSummary(CampaignSummary{
		CampaignID:  "c-1",
		BulkID:      "bulk-9",
		Status:      "COMPLETED",
		Total:       120,
		Sent:        118,
		Failed:      2,
		StartedAt:   start,
		CompletedAt: start.Add(2*time.Minute + 4*time.Second),
	})
	if err != nil {
		t.Fatal(err)
	}
	if subject != "WhatsApp campaign completed: 118 of 120 sent" {
		t.Errorf("subject = %q", subject)
	}
	for _, want := range []string{"2m4s", "https://admin.example.org/admin/whatsapp/campaigns/c-1", "bulk-9"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestSendWithoutAPIKeyOnlyLogs(t *testing.T) {
	var buf bytes.Buffer
	svc := NewEmailService(Config{NotifyTo: []string{"ops@example.org"}}, zerolog.New(&buf))

	if err := svc.SendCampaignSummary(context.Background(), CampaignSummary{CampaignID: "c-2", Status: "COMPLETED"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "campaign summary not sent") {
		t.Errorf("expected log line, got %s", buf.String())
	}
}
