package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemStatus describes what health reports about the backend link.
type SystemStatus interface {
	BreakerState() string
	BaseURL() string
}

// SystemController serves liveness and health checks
type SystemController struct {
	backend   SystemStatus
	db        Pinger
	startedAt time.Time
}

// NewSystemController creates a new SystemController. db is nil when the
// in-memory store is used.
func NewSystemController(backend SystemStatus, db Pinger) *SystemController {
	return &SystemController{backend: backend, db: db, startedAt: time.Now()}
}

// Ping answers liveness probes.
func (sc *SystemController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
}

// Health reports the backend circuit breaker and the local store
// @Summary Health check
// @Description Reports 503 when the database is unreachable or the backend breaker is open
// @Tags system
// @Produce json
// @Success 200 {object} dto.APIResponse{data=map[string]interface{}} "Healthy"
// @Failure 503 {object} dto.APIResponse{data=map[string]interface{}} "Degraded"
// @Router /health [get]
func (sc *SystemController) Health(ctx *gin.Context) {
	status := http.StatusOK
	data := gin.H{
		"status": "ok",
		"uptime": time.Since(sc.startedAt).Round(time.Second).String(),
	}

	backend := gin.H{"configured": sc.backend.BaseURL() != "", "breaker": sc.backend.BreakerState()}
	if sc.backend.BreakerState() == "open" {
		status = http.StatusServiceUnavailable
	}
	data["backend"] = backend

	store := gin.H{"kind": "memory"}
	if sc.db != nil {
		store["kind"] = "postgres"
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := sc.db.Ping(pingCtx); err != nil {
			store["error"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	data["store"] = store

	if status != http.StatusOK {
		data["status"] = "degraded"
	}
	ctx.JSON(status, dto.APIResponse{Success: status == http.StatusOK, Data: data, Timestamp: time.Now()})
}
