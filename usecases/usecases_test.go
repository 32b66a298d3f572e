package usecases

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"ecotracker/cache"
	"ecotracker/db"
	"ecotracker/entities"
	"ecotracker/repositories"
	"ecotracker/services"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var forecastNow = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

type published struct {
	DeviceID string
	Data     interface{}
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
}

func (p *fakePublisher) Publish(deviceID string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{DeviceID: deviceID, Data: data})
}

func (p *fakePublisher) messages() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.sent...)
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type fixture struct {
	devices     repositories.DeviceRepository
	readings    repositories.SensorReadingRepository
	alerts      repositories.AlertRepository
	predictions repositories.PredictionRepository
	users       repositories.UserRepository
	cache       *cache.ReadingCache
	publisher   *fakePublisher

	pipeline *PipelineUseCase
	device   *DeviceUseCase
	auth     *AuthUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDatabase(t)
	log := testLogger()

	f := &fixture{
		devices:     repositories.NewDevicePgRepository(database),
		readings:    repositories.NewSensorReadingPgRepository(database),
		alerts:      repositories.NewAlertPgRepository(database),
		predictions: repositories.NewPredictionPgRepository(database),
		users:       repositories.NewUserPgRepository(database),
		cache:       cache.NewReadingCache(),
		publisher:   &fakePublisher{},
	}

	forecaster := services.NewForecasterWith(func() time.Time { return forecastNow }, rand.NewSource(7))
	f.pipeline = NewPipelineUseCase(f.devices, f.readings, f.alerts, f.predictions, forecaster, f.cache, f.publisher, log)
	f.device = NewDeviceUseCase(f.devices, f.readings, f.alerts, f.predictions, f.cache, log)
	f.auth = NewAuthUseCase(f.users, "test-secret", time.Hour, log)
	f.auth.bcryptCost = 4
	return f
}

func (f *fixture) seedDevice(t *testing.T, userID, mac string) *entities.Device {
	t.Helper()
	d, err := f.device.CreateDevice(context.Background(), userID, CreateDeviceInput{Name: "bedroom", MacAddress: mac})
	require.NoError(t, err)
	return d
}
