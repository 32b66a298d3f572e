package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecotracker/entities"
	"ecotracker/errs"
	"ecotracker/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCriticalTemperature(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	device := f.seedDevice(t, "user-1", "AA:BB:CC:DD:EE:FF")

	reading, alerts, err := f.pipeline.Ingest(ctx, "aa:bb:cc:dd:ee:ff", []byte(`{"temperature":36,"humidity":50,"airQuality":50}`))
	require.NoError(t, err)

	require.NotNil(t, reading)
	assert.NotEmpty(t, reading.ID)
	assert.Equal(t, device.ID, reading.DeviceID)
	assert.Equal(t, 36.0, *reading.Temperature)
	assert.Equal(t, 50, *reading.AirQuality)

	require.Len(t, alerts, 1)
	assert.Equal(t, entities.MetricTemperature, alerts[0].Type)
	assert.Equal(t, entities.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, 35.0, alerts[0].Threshold)
	assert.NotEmpty(t, alerts[0].ID)

	stored, err := f.alerts.GetUnreadByDeviceID(ctx, device.ID, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, alerts[0].ID, stored[0].ID)
	assert.False(t, stored[0].IsRead)

	updated, err := f.devices.GetByID(ctx, device.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsOnline)
	require.NotNil(t, updated.LastSeen)

	cached, ok := f.cache.Get(device.ID)
	require.True(t, ok)
	assert.Equal(t, reading.ID, cached.ID)

	msgs := f.publisher.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, device.ID, msgs[0].DeviceID)
	live, ok := msgs[0].Data.(LiveReading)
	require.True(t, ok)
	assert.Equal(t, reading.ID, live.ID)
	assert.Equal(t, "Good", live.AirQualityStatus)
}

func TestIngestUnhealthyAirAndPartialPayload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedDevice(t, "user-1", "AA:BB:CC:DD:EE:FF")

	_, alerts, err := f.pipeline.Ingest(ctx, "AA:BB:CC:DD:EE:FF", []byte(`{"temperature":22,"humidity":45,"airQuality":250}`))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, entities.MetricAirQuality, alerts[0].Type)
	assert.Equal(t, 250.0, alerts[0].Value)

	reading, alerts, err := f.pipeline.Ingest(ctx, "AA:BB:CC:DD:EE:FF", []byte(`{"humidity":55}`))
	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
	assert.Nil(t, reading.Temperature)
	assert.Nil(t, reading.AirQuality)
}

func TestIngestRejectsWithoutSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	device := f.seedDevice(t, "user-1", "AA:BB:CC:DD:EE:FF")

	_, _, err := f.pipeline.Ingest(ctx, "", []byte(`{"temperature":20}`))
	var verr *errs.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "mac_address", verr.Field)

	_, _, err = f.pipeline.Ingest(ctx, "AA:BB:CC:DD:EE:FF", []byte(`{"temperature":95}`))
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "temperature", verr.Field)

	_, _, err = f.pipeline.Ingest(ctx, "11:22:33:44:55:66", []byte(`{"temperature":20}`))
	assert.ErrorIs(t, err, errs.ErrDeviceNotFound)

	latest, err := f.readings.GetLatestByDeviceID(ctx, device.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)
	assert.Empty(t, f.publisher.messages())

	unchanged, err := f.devices.GetByID(ctx, device.ID)
	require.NoError(t, err)
	assert.False(t, unchanged.IsOnline)
}

func TestGeneratePredictions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	device := f.seedDevice(t, "user-1", "AA:BB:CC:DD:EE:FF")

	clock := time.Now().UTC()
	f.pipeline.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	for _, body := range []string{`{"temperature":20,"humidity":40,"airQuality":100}`, `{"temperature":30,"humidity":60,"airQuality":120}`} {
		_, _, err := f.pipeline.Ingest(ctx, "AA:BB:CC:DD:EE:FF", []byte(body))
		require.NoError(t, err)
	}

	predictions, err := f.pipeline.GeneratePredictions(ctx, device.ID, "")
	require.NoError(t, err)
	require.Len(t, predictions, services.DefaultHorizon)
	for _, p := range predictions {
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, services.PredictAirQuality, p.PredictionType)
	}
	// 12:00 target with the fixture clock, same history as the forecaster tests
	assert.Equal(t, 100.31, predictions[1].PredictedValue)

	stored, err := f.device.LatestPredictions(ctx, "user-1", device.ID, services.PredictAirQuality)
	require.NoError(t, err)
	assert.Len(t, stored, 24)

	_, err = f.pipeline.GeneratePredictions(ctx, "missing", services.PredictTemperature)
	assert.ErrorIs(t, err, errs.ErrDeviceNotFound)
}

func TestGeneratePredictionsWithoutHistory(t *testing.T) {
	f := newFixture(t)
	device := f.seedDevice(t, "user-1", "AA:BB:CC:DD:EE:FF")

	predictions, err := f.pipeline.GeneratePredictions(context.Background(), device.ID, services.PredictAirQuality)
	require.NoError(t, err)
	require.Len(t, predictions, 24)
	assert.Equal(t, 100.0, predictions[0].PredictedValue)
}

func TestRegenerateAllSkipsSilentDevices(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	active := f.seedDevice(t, "user-1", "AA:BB:CC:DD:EE:01")
	silent := f.seedDevice(t, "user-1", "AA:BB:CC:DD:EE:02")

	_, _, err := f.pipeline.Ingest(ctx, "AA:BB:CC:DD:EE:01", []byte(`{"temperature":21}`))
	require.NoError(t, err)

	count, err := f.pipeline.RegenerateAll(ctx, []string{services.PredictAirQuality, services.PredictHumidity})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := f.predictions.GetLatest(ctx, active.ID, services.PredictHumidity, 0)
	require.NoError(t, err)
	assert.Len(t, got, 24)

	got, err = f.predictions.GetLatest(ctx, silent.ID, services.PredictAirQuality, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
