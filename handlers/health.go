package handlers

import (
	"context"
	"net/http"
	"time"

	"vorve-checkout-api/utils"
)

// Pinger is satisfied by the Redis connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	redis   Pinger
	started time.Time
}

// NewHealthHandler takes a nil redis when Redis is not configured.
func NewHealthHandler(redis Pinger, started time.Time) *HealthHandler {
	return &HealthHandler{redis: redis, started: started}
}

type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
	Uptime string `json:"uptime"`
	Redis  string `json:"redis"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	health := healthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
		Uptime: time.Since(h.started).Round(time.Second).String(),
		Redis:  "disabled",
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		health.Redis = "connected"
		if err := h.redis.Ping(ctx); err != nil {
			health.Status = "degraded"
			health.Redis = "error"
		}
	}

	utils.SendJSON(w, http.StatusOK, health)
}
