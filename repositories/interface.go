package repositories

import (
	"context"
	"time"

	"ecotracker/entities"
)

type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

type DeviceRepository interface {
	Create(ctx context.Context, device *entities.Device) error
	GetByID(ctx context.Context, id string) (*entities.Device, error)
	GetByMacAddress(ctx context.Context, mac string) (*entities.Device, error)
	GetByUserID(ctx context.Context, userID string) ([]entities.Device, error)
	GetAll(ctx context.Context) ([]entities.Device, error)
	UpdateStatus(ctx context.Context, id string, online bool, lastSeen time.Time) error
}

type SensorReadingRepository interface {
	Create(ctx context.Context, reading *entities.SensorReading) error
	GetLatestByDeviceID(ctx context.Context, deviceID string) (*entities.SensorReading, error)
	// GetInRange returns readings with start <= timestamp <= end, newest first.
	GetInRange(ctx context.Context, deviceID string, start, end time.Time) ([]entities.SensorReading, error)
	// GetDeviceIDsSince lists devices that reported at least once since t.
	GetDeviceIDsSince(ctx context.Context, t time.Time) ([]string, error)
}

type AlertRepository interface {
	Create(ctx context.Context, alert *entities.Alert) error
	GetByID(ctx context.Context, id string) (*entities.Alert, error)
	GetUnreadByDeviceID(ctx context.Context, deviceID string, limit int) ([]entities.Alert, error)
	MarkRead(ctx context.Context, id string) error
}

type PredictionRepository interface {
	Create(ctx context.Context, prediction *entities.Prediction) error
	GetLatest(ctx context.Context, deviceID, predictionType string, limit int) ([]entities.Prediction, error)
}
