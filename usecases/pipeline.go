package usecases

import (
	"context"
	"strings"
	"time"

	"ecotracker/cache"
	"ecotracker/entities"
	"ecotracker/errs"
	"ecotracker/repositories"
	"ecotracker/services"

	"github.com/sirupsen/logrus"
)

// predictions are generated from at most one week of readings
const historyWindow = 7 * 24 * time.Hour

// Publisher fans a live update out to dashboard subscribers of a device.
type Publisher interface {
	Publish(deviceID string, data interface{})
}

// LiveReading is the payload pushed to dashboards and returned as the latest
// reading of a device.
type LiveReading struct {
	entities.SensorReading
	AirQualityStatus string `json:"airQualityStatus,omitempty"`
	AirQualityColor  string `json:"airQualityColor,omitempty"`
}

func NewLiveReading(r entities.SensorReading) LiveReading {
	live := LiveReading{SensorReading: r}
	if r.AirQuality != nil {
		live.AirQualityStatus = services.AirQualityStatus(*r.AirQuality)
		live.AirQualityColor = services.AirQualityColor(*r.AirQuality)
	}
	return live
}

// NormalizeMAC trims and upper-cases a MAC address so lookups do not depend
// on how the firmware formats it.
func NormalizeMAC(mac string) string {
	return strings.ToUpper(strings.TrimSpace(mac))
}

// PipelineUseCase turns device payloads into stored readings, alerts and live
// updates, and turns stored history into forecasts.
type PipelineUseCase struct {
	DeviceRepo     repositories.DeviceRepository
	ReadingRepo    repositories.SensorReadingRepository
	AlertRepo      repositories.AlertRepository
	PredictionRepo repositories.PredictionRepository
	Forecaster     *services.Forecaster
	Cache          *cache.ReadingCache
	Publisher      Publisher

	log *logrus.Entry
	now func() time.Time
}

func NewPipelineUseCase(
	deviceRepo repositories.DeviceRepository,
	readingRepo repositories.SensorReadingRepository,
	alertRepo repositories.AlertRepository,
	predictionRepo repositories.PredictionRepository,
	forecaster *services.Forecaster,
	readingCache *cache.ReadingCache,
	publisher Publisher,
	log *logrus.Entry,
) *PipelineUseCase {
	return &PipelineUseCase{
		DeviceRepo:     deviceRepo,
		ReadingRepo:    readingRepo,
		AlertRepo:      alertRepo,
		PredictionRepo: predictionRepo,
		Forecaster:     forecaster,
		Cache:          readingCache,
		Publisher:      publisher,
		log:            log,
		now:            time.Now,
	}
}

// Ingest validates a payload from the device identified by mac, stores it,
// raises threshold alerts and publishes the reading. Nothing is written when
// validation fails or the device is unknown.
func (uc *PipelineUseCase) Ingest(ctx context.Context, mac string, raw []byte) (*entities.SensorReading, []entities.Alert, error) {
	mac = NormalizeMAC(mac)
	if mac == "" {
		return nil, nil, errs.NewValidationError("mac_address", "is required")
	}

	input, err := services.ValidateReading(raw)
	if err != nil {
		return nil, nil, err
	}

	device, err := uc.DeviceRepo.GetByMacAddress(ctx, mac)
	if err != nil {
		return nil, nil, err
	}

	now := uc.now().UTC()
	if err := uc.DeviceRepo.UpdateStatus(ctx, device.ID, true, now); err != nil {
		return nil, nil, err
	}

	reading := &entities.SensorReading{
		DeviceID:    device.ID,
		Temperature: input.Temperature,
		Humidity:    input.Humidity,
		AirQuality:  input.AirQuality,
		Timestamp:   now,
	}
	if err := uc.ReadingRepo.Create(ctx, reading); err != nil {
		return nil, nil, err
	}

	alerts := services.EvaluateThresholds(device.ID, input)
	for i := range alerts {
		if err := uc.AlertRepo.Create(ctx, &alerts[i]); err != nil {
			uc.log.Errorf("reading %s stored but alert %q could not be saved: %s", reading.ID, alerts[i].Title, err)
			return nil, nil, err
		}
		uc.log.WithField("device", device.ID).Infof("%s alert: %s", alerts[i].Severity, alerts[i].Message)
	}
	if alerts == nil {
		alerts = []entities.Alert{}
	}

	if uc.Cache != nil {
		uc.Cache.Set(*reading)
	}
	if uc.Publisher != nil {
		uc.Publisher.Publish(device.ID, NewLiveReading(*reading))
	}

	uc.log.Debugf("ingested reading %s from %s (%d alerts)", reading.ID, mac, len(alerts))
	return reading, alerts, nil
}

// GeneratePredictions forecasts the next day for one device from its last
// week of readings and stores the result.
func (uc *PipelineUseCase) GeneratePredictions(ctx context.Context, deviceID, predictionType string) ([]entities.Prediction, error) {
	predictionType = strings.TrimSpace(predictionType)
	if predictionType == "" {
		predictionType = services.PredictAirQuality
	}

	if _, err := uc.DeviceRepo.GetByID(ctx, deviceID); err != nil {
		return nil, err
	}

	end := uc.now().UTC()
	history, err := uc.ReadingRepo.GetInRange(ctx, deviceID, end.Add(-historyWindow), end)
	if err != nil {
		return nil, err
	}

	predictions := uc.Forecaster.Forecast(deviceID, predictionType, history, services.DefaultHorizon)
	for i := range predictions {
		if err := uc.PredictionRepo.Create(ctx, &predictions[i]); err != nil {
			return nil, err
		}
	}

	uc.log.Debugf("generated %d %s predictions for %s from %d readings", len(predictions), predictionType, deviceID, len(history))
	return predictions, nil
}

// RegenerateAll refreshes forecasts of every device that reported within the
// history window. A failing device is logged and skipped. It returns how
// many device/type pairs succeeded.
func (uc *PipelineUseCase) RegenerateAll(ctx context.Context, predictionTypes []string) (int, error) {
	if len(predictionTypes) == 0 {
		predictionTypes = []string{services.PredictAirQuality}
	}

	deviceIDs, err := uc.ReadingRepo.GetDeviceIDsSince(ctx, uc.now().UTC().Add(-historyWindow))
	if err != nil {
		return 0, err
	}

	generated := 0
	for _, id := range deviceIDs {
		for _, kind := range predictionTypes {
			if ctx.Err() != nil {
				return generated, ctx.Err()
			}
			if _, err := uc.GeneratePredictions(ctx, id, kind); err != nil {
				uc.log.Warnf("could not regenerate %s predictions for %s: %s", kind, id, err)
				continue
			}
			generated++
		}
	}

	return generated, nil
}
