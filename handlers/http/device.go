package httpHandler

import (
	"net/http"
	"time"

	"ecotracker/errs"
	"ecotracker/usecases"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type DeviceHandler struct {
	useCase *usecases.DeviceUseCase
	log     *logrus.Entry
}

func NewDeviceHandler(useCase *usecases.DeviceUseCase, log *logrus.Entry) *DeviceHandler {
	return &DeviceHandler{
		useCase: useCase,
		log:     log,
	}
}

// CreateDevice handles POST /api/v1/devices
func (h *DeviceHandler) CreateDevice(c *gin.Context) {
	var req usecases.CreateDeviceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	device, err := h.useCase.CreateDevice(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Device created successfully",
		"data":    device,
	})
}

// GetDevices handles GET /api/v1/devices
func (h *DeviceHandler) GetDevices(c *gin.Context) {
	devices, err := h.useCase.ListDevices(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  devices,
		"count": len(devices),
	})
}

// GetLatestReading handles GET /api/v1/sensors/:deviceId/latest
func (h *DeviceHandler) GetLatestReading(c *gin.Context) {
	reading, err := h.useCase.LatestReading(c.Request.Context(), currentUserID(c), c.Param("deviceId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reading})
}

// GetHistory handles GET /api/v1/sensors/:deviceId/history?startDate=&endDate=
func (h *DeviceHandler) GetHistory(c *gin.Context) {
	start, end, err := dateRange(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	readings, err := h.useCase.History(c.Request.Context(), currentUserID(c), c.Param("deviceId"), start, end)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  readings,
		"count": len(readings),
	})
}

// ExportHistory handles GET /api/v1/sensors/:deviceId/export
func (h *DeviceHandler) ExportHistory(c *gin.Context) {
	start, end, err := dateRange(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	deviceID := c.Param("deviceId")
	body, err := h.useCase.ExportHistoryCSV(c.Request.Context(), currentUserID(c), deviceID, start, end)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+deviceID+`-readings.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

// GetUnreadAlerts handles GET /api/v1/alerts/:deviceId
func (h *DeviceHandler) GetUnreadAlerts(c *gin.Context) {
	alerts, err := h.useCase.UnreadAlerts(c.Request.Context(), currentUserID(c), c.Param("deviceId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  alerts,
		"count": len(alerts),
	})
}

// MarkAlertRead handles PATCH /api/v1/alerts/:alertId/read
func (h *DeviceHandler) MarkAlertRead(c *gin.Context) {
	if err := h.useCase.MarkAlertRead(c.Request.Context(), currentUserID(c), c.Param("alertId")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// dateRange reads the optional startDate/endDate query parameters. Both
// RFC 3339 timestamps and plain dates are accepted; a plain endDate covers
// the whole day.
func dateRange(c *gin.Context) (time.Time, time.Time, error) {
	start, err := parseDate("startDate", c.Query("startDate"), false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate("endDate", c.Query("endDate"), true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseDate(field, value string, endOfDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t, nil
	}
	return time.Time{}, errs.NewValidationError(field, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
}
