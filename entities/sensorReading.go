package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SensorReading is one sample pushed by a device. A nil metric means the
// sensor did not report it, which is not the same as a zero value.
type SensorReading struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	DeviceID    string    `gorm:"index:idx_sensor_readings_device_timestamp,priority:1;type:varchar(36);not null" json:"deviceId"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	AirQuality  *int      `json:"airQuality"`
	Timestamp   time.Time `gorm:"index:idx_sensor_readings_device_timestamp,priority:2,sort:desc" json:"timestamp"`
}

func (r *SensorReading) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	return
}
