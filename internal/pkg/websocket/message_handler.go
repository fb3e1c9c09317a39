package websocket

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SnapshotProvider returns the latest known state of a campaign.
type SnapshotProvider interface {
	CampaignSnapshot(ctx context.Context, campaignID string) (interface{}, error)
}

// MessageHandler answers subscriber control frames.
type MessageHandler struct {
	hub       *Hub
	snapshots SnapshotProvider
	logger    zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(hub *Hub, snapshots SnapshotProvider, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		hub:       hub,
		snapshots: snapshots,
		logger:    logger,
	}
}

// HandleClientRequest processes one frame from a subscriber. "refresh"
// re-sends the current snapshot; "ping" is answered with "pong".
func (h *MessageHandler) HandleClientRequest(c *Client, req clientRequest) {
	switch req.Type {
	case "refresh":
		h.sendSnapshot(c)
	case "ping":
		h.hub.reply(c, &Message{Type: "pong", CampaignID: c.campaignID, Timestamp: time.Now()})
	default:
		h.logger.Debug().Str("type", req.Type).Str("campaignID", c.campaignID).Msg("Unknown client frame type")
	}
}

func (h *MessageHandler) sendSnapshot(c *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := h.snapshots.CampaignSnapshot(ctx, c.campaignID)
	if err != nil {
		h.logger.Warn().Err(err).Str("campaignID", c.campaignID).Msg("Failed to load campaign snapshot")
		h.hub.reply(c, &Message{Type: TypeError, CampaignID: c.campaignID, Data: "snapshot unavailable", Timestamp: time.Now()})
		return
	}
	h.hub.reply(c, &Message{Type: TypeSnapshot, CampaignID: c.campaignID, Data: snap, Timestamp: time.Now()})
}
