package usecases

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"ecotracker/cache"
	"ecotracker/entities"
	"ecotracker/errs"
	"ecotracker/repositories"

	"github.com/sirupsen/logrus"
)

const defaultHistorySpan = 24 * time.Hour

type CreateDeviceInput struct {
	Name       string `json:"name" validate:"required,max=100"`
	MacAddress string `json:"macAddress" validate:"omitempty,mac"`
	IPAddress  string `json:"ipAddress" validate:"omitempty,ip"`
	Firmware   string `json:"firmware" validate:"max=50"`
}

type DeviceUseCase struct {
	DeviceRepo     repositories.DeviceRepository
	ReadingRepo    repositories.SensorReadingRepository
	AlertRepo      repositories.AlertRepository
	PredictionRepo repositories.PredictionRepository
	Cache          *cache.ReadingCache

	log *logrus.Entry
	now func() time.Time
}

func NewDeviceUseCase(
	deviceRepo repositories.DeviceRepository,
	readingRepo repositories.SensorReadingRepository,
	alertRepo repositories.AlertRepository,
	predictionRepo repositories.PredictionRepository,
	readingCache *cache.ReadingCache,
	log *logrus.Entry,
) *DeviceUseCase {
	return &DeviceUseCase{
		DeviceRepo:     deviceRepo,
		ReadingRepo:    readingRepo,
		AlertRepo:      alertRepo,
		PredictionRepo: predictionRepo,
		Cache:          readingCache,
		log:            log,
		now:            time.Now,
	}
}

// CreateDevice registers a device for userID.
func (uc *DeviceUseCase) CreateDevice(ctx context.Context, userID string, in CreateDeviceInput) (*entities.Device, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.MacAddress = NormalizeMAC(in.MacAddress)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	device := &entities.Device{
		UserID:    userID,
		Name:      in.Name,
		IPAddress: in.IPAddress,
		Firmware:  in.Firmware,
	}
	if in.MacAddress != "" {
		device.MacAddress = &in.MacAddress
	}

	if err := uc.DeviceRepo.Create(ctx, device); err != nil {
		return nil, err
	}
	uc.log.Infof("created device %s for user %s", device.ID, userID)
	return device, nil
}

func (uc *DeviceUseCase) ListDevices(ctx context.Context, userID string) ([]entities.Device, error) {
	return uc.DeviceRepo.GetByUserID(ctx, userID)
}

// FleetStats counts every registered device and how many of them are online.
func (uc *DeviceUseCase) FleetStats(ctx context.Context) (map[string]interface{}, error) {
	devices, err := uc.DeviceRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	online := 0
	for _, d := range devices {
		if d.IsOnline {
			online++
		}
	}
	return map[string]interface{}{
		"registered": len(devices),
		"online":     online,
	}, nil
}

// GetOwnedDevice loads a device and checks that userID owns it.
func (uc *DeviceUseCase) GetOwnedDevice(ctx context.Context, userID, deviceID string) (*entities.Device, error) {
	if deviceID == "" {
		return nil, errs.NewValidationError("deviceId", "is required")
	}
	device, err := uc.DeviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device.UserID != userID {
		return nil, errs.ErrForbidden
	}
	return device, nil
}

// LatestReading returns the newest reading of a device, or nil if it never
// reported.
func (uc *DeviceUseCase) LatestReading(ctx context.Context, userID, deviceID string) (*LiveReading, error) {
	if _, err := uc.GetOwnedDevice(ctx, userID, deviceID); err != nil {
		return nil, err
	}

	if uc.Cache != nil {
		if r, ok := uc.Cache.Get(deviceID); ok {
			live := NewLiveReading(r)
			return &live, nil
		}
	}

	r, err := uc.ReadingRepo.GetLatestByDeviceID(ctx, deviceID)
	if err != nil || r == nil {
		return nil, err
	}
	if uc.Cache != nil {
		uc.Cache.Set(*r)
	}
	live := NewLiveReading(*r)
	return &live, nil
}

// History returns readings between start and end, newest first. Zero bounds
// default to the last 24 hours.
func (uc *DeviceUseCase) History(ctx context.Context, userID, deviceID string, start, end time.Time) ([]entities.SensorReading, error) {
	if _, err := uc.GetOwnedDevice(ctx, userID, deviceID); err != nil {
		return nil, err
	}

	if end.IsZero() {
		end = uc.now().UTC()
	}
	if start.IsZero() {
		start = end.Add(-defaultHistorySpan)
	}
	if start.After(end) {
		return nil, errs.NewValidationError("startDate", "must not be after endDate")
	}

	readings, err := uc.ReadingRepo.GetInRange(ctx, deviceID, start, end)
	if err != nil {
		return nil, err
	}
	if readings == nil {
		readings = []entities.SensorReading{}
	}
	return readings, nil
}

// ExportHistoryCSV renders History as CSV with a header row. Missing metrics
// are left empty.
func (uc *DeviceUseCase) ExportHistoryCSV(ctx context.Context, userID, deviceID string, start, end time.Time) ([]byte, error) {
	readings, err := uc.History(ctx, userID, deviceID, start, end)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"timestamp", "temperature", "humidity", "air_quality"}); err != nil {
		return nil, err
	}
	for _, r := range readings {
		row := []string{r.Timestamp.UTC().Format(time.RFC3339), floatCell(r.Temperature), floatCell(r.Humidity), ""}
		if r.AirQuality != nil {
			row[3] = strconv.Itoa(*r.AirQuality)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func (uc *DeviceUseCase) UnreadAlerts(ctx context.Context, userID, deviceID string) ([]entities.Alert, error) {
	if _, err := uc.GetOwnedDevice(ctx, userID, deviceID); err != nil {
		return nil, err
	}
	alerts, err := uc.AlertRepo.GetUnreadByDeviceID(ctx, deviceID, 10)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []entities.Alert{}
	}
	return alerts, nil
}

// MarkAlertRead acknowledges an alert on one of userID's devices.
func (uc *DeviceUseCase) MarkAlertRead(ctx context.Context, userID, alertID string) error {
	alert, err := uc.AlertRepo.GetByID(ctx, alertID)
	if err != nil {
		return err
	}
	if _, err := uc.GetOwnedDevice(ctx, userID, alert.DeviceID); err != nil {
		return err
	}
	return uc.AlertRepo.MarkRead(ctx, alertID)
}

func (uc *DeviceUseCase) LatestPredictions(ctx context.Context, userID, deviceID, predictionType string) ([]entities.Prediction, error) {
	if _, err := uc.GetOwnedDevice(ctx, userID, deviceID); err != nil {
		return nil, err
	}
	predictions, err := uc.PredictionRepo.GetLatest(ctx, deviceID, predictionType, 24)
	if err != nil {
		return nil, err
	}
	if predictions == nil {
		predictions = []entities.Prediction{}
	}
	return predictions, nil
}
