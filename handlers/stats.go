package handlers

import (
	"context"
	"net/http"

	"ecotracker/cache"
	"ecotracker/ws"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type FleetCounter interface {
	FleetStats(ctx context.Context) (map[string]interface{}, error)
}

type StatsHandler struct {
	hub   *ws.Hub
	cache *cache.ReadingCache
	fleet FleetCounter
	log   *logrus.Entry
}

func NewStatsHandler(hub *ws.Hub, readingCache *cache.ReadingCache, fleet FleetCounter, log *logrus.Entry) *StatsHandler {
	return &StatsHandler{hub: hub, cache: readingCache, fleet: fleet, log: log}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	devices, err := h.fleet.FleetStats(c.Request.Context())
	if err != nil {
		h.log.Errorf("could not count devices: %s", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"websocket": h.hub.Stats(),
		"cache":     h.cache.GetCacheStats(),
		"devices":   devices,
	})
}
