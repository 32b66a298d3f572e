package httpHandler

import (
	"errors"
	"io"
	"net/http"

	"ecotracker/services"
	"ecotracker/usecases"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PredictionHandler struct {
	devices    *usecases.DeviceUseCase
	pipeline   *usecases.PipelineUseCase
	forecaster *services.Forecaster
	log        *logrus.Entry
}

func NewPredictionHandler(devices *usecases.DeviceUseCase, pipeline *usecases.PipelineUseCase, forecaster *services.Forecaster, log *logrus.Entry) *PredictionHandler {
	return &PredictionHandler{devices: devices, pipeline: pipeline, forecaster: forecaster, log: log}
}

type GenerateRequest struct {
	Type string `json:"type"`
}

// GetPredictions handles GET /api/v1/predictions/:deviceId/:type
func (h *PredictionHandler) GetPredictions(c *gin.Context) {
	predictions, err := h.devices.LatestPredictions(c.Request.Context(), currentUserID(c), c.Param("deviceId"), c.Param("type"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  predictions,
		"count": len(predictions),
	})
}

// Generate handles POST /api/v1/predictions/:deviceId/generate. An empty
// body generates air quality predictions.
func (h *PredictionHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	device, err := h.devices.GetOwnedDevice(ctx, currentUserID(c), c.Param("deviceId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	predictions, err := h.pipeline.GeneratePredictions(ctx, device.ID, req.Type)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  predictions,
		"count": len(predictions),
	})
}

// GetModel handles GET /api/v1/ml/model
func (h *PredictionHandler) GetModel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":           services.ModelVersion,
		"featureImportance": h.forecaster.FeatureImportance(),
		"modelPerformance":  h.forecaster.ModelPerformance(),
	})
}
