package repositories

import (
	"context"
	"time"

	"ecotracker/db"
	"ecotracker/entities"
)

type sensorReadingPgRepository struct {
	db db.Database
}

func NewSensorReadingPgRepository(database db.Database) SensorReadingRepository {
	return &sensorReadingPgRepository{db: database}
}

func (r *sensorReadingPgRepository) Create(ctx context.Context, reading *entities.SensorReading) error {
	return translate("create reading", r.db.GetDB().WithContext(ctx).Create(reading).Error, nil, nil)
}

// GetLatestByDeviceID returns nil without error when the device has no readings.
func (r *sensorReadingPgRepository) GetLatestByDeviceID(ctx context.Context, deviceID string) (*entities.SensorReading, error) {
	var readings []entities.SensorReading
	err := r.db.GetDB().WithContext(ctx).Where("device_id = ?", deviceID).Order("timestamp DESC").Limit(1).Find(&readings).Error
	if err != nil {
		return nil, translate("get latest reading", err, nil, nil)
	}
	if len(readings) == 0 {
		return nil, nil
	}
	return &readings[0], nil
}

func (r *sensorReadingPgRepository) GetInRange(ctx context.Context, deviceID string, start, end time.Time) ([]entities.SensorReading, error) {
	var readings []entities.SensorReading
	err := r.db.GetDB().WithContext(ctx).
		Where("device_id = ? AND timestamp >= ? AND timestamp <= ?", deviceID, start.UTC(), end.UTC()).
		Order("timestamp DESC").
		Find(&readings).Error
	return readings, translate("list readings in range", err, nil, nil)
}

func (r *sensorReadingPgRepository) GetDeviceIDsSince(ctx context.Context, t time.Time) ([]string, error) {
	var ids []string
	err := r.db.GetDB().WithContext(ctx).Model(&entities.SensorReading{}).
		Where("timestamp >= ?", t.UTC()).
		Distinct().
		Pluck("device_id", &ids).Error
	return ids, translate("list active devices", err, nil, nil)
}
