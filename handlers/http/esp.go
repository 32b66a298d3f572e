package httpHandler

import (
	"io"
	"net/http"

	"ecotracker/errs"
	"ecotracker/usecases"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxReadingBody bounds what a device may post in one request.
const maxReadingBody = 4 << 10

type IngestHandler struct {
	pipeline *usecases.PipelineUseCase
	log      *logrus.Entry
}

func NewIngestHandler(pipeline *usecases.PipelineUseCase, log *logrus.Entry) *IngestHandler {
	return &IngestHandler{pipeline: pipeline, log: log}
}

// PostReading handles POST /api/v1/esp/data. The device identifies itself
// with a macaddress (or mac-address) header.
func (h *IngestHandler) PostReading(c *gin.Context) {
	mac := c.GetHeader("macaddress")
	if mac == "" {
		mac = c.GetHeader("mac-address")
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxReadingBody+1))
	if err != nil {
		badRequest(c, err)
		return
	}
	if len(raw) > maxReadingBody {
		respondError(c, h.log, errs.NewValidationError("body", "payload too large"))
		return
	}

	reading, alerts, err := h.pipeline.Ingest(c.Request.Context(), mac, raw)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reading": reading,
		"alerts":  alerts,
	})
}
