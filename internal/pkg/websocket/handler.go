package websocket

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
)

// Handler upgrades campaign progress subscriptions.
type Handler struct {
	hub      *Hub
	messages *MessageHandler
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, snapshots SnapshotProvider, allowedOrigin string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		messages: NewMessageHandler(hub, snapshots, logger),
		upgrader: NewUpgrader(allowedOrigin),
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to campaign progress
// @Description Upgrades to a WebSocket that streams bulk send progress for one campaign. The current snapshot is sent first.
// @Tags whatsapp, websocket
// @Security SessionAuth
// @Param id path string true "Campaign ID"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse "No admin session"
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Router /whatsapp/campaigns/{id}/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	campaignID := c.Param("id")
	userID := c.GetString("userID")

	snap, err := h.messages.snapshots.CampaignSnapshot(c.Request.Context(), campaignID)
	if err != nil {
		status := http.StatusInternalServerError
		code := dto.ErrorCodeInternalServer
		if errors.Is(err, apperrors.ErrCampaignNotFound) || errors.Is(err, apperrors.ErrResourceNotFound) {
			status = http.StatusNotFound
			code = dto.ErrorCodeResourceNotFound
		}
		c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, err.Error())))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Str("campaignID", campaignID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:        h.hub,
		conn:       conn,
		send:       make(chan []byte, 64),
		handler:    h.messages,
		userID:     userID,
		campaignID: campaignID,
		logger:     h.logger,
	}
	if !h.hub.join(client) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.hub.reply(client, &Message{Type: TypeSnapshot, CampaignID: campaignID, Data: snap, Timestamp: time.Now()})

	h.logger.Info().
		Str("campaignID", campaignID).
		Str("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
