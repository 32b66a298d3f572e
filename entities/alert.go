package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MetricTemperature = "temperature"
	MetricHumidity    = "humidity"
	MetricAirQuality  = "air_quality"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

type Alert struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	DeviceID  string    `gorm:"index:idx_alerts_device_read_created,priority:1;type:varchar(36);not null" json:"deviceId"`
	Type      string    `gorm:"type:varchar(32);not null" json:"type"`     // temperature, humidity, air_quality
	Severity  string    `gorm:"type:varchar(16);not null" json:"severity"` // info, warning, critical
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	IsRead    bool      `gorm:"index:idx_alerts_device_read_created,priority:2;default:false" json:"isRead"`
	CreatedAt time.Time `gorm:"index:idx_alerts_device_read_created,priority:3,sort:desc" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Alert) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	return
}
