package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prediction rows are append-only. Several rows may target the same
// PredictionFor hour; the newest CreatedAt is the one to display.
type Prediction struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	DeviceID       string    `gorm:"index:idx_predictions_device_type_created,priority:1;type:varchar(36);not null" json:"deviceId"`
	PredictionType string    `gorm:"index:idx_predictions_device_type_created,priority:2;type:varchar(32);not null" json:"predictionType"`
	PredictedValue float64   `gorm:"not null" json:"predictedValue"`
	Confidence     float64   `json:"confidence"`
	PredictionFor  time.Time `gorm:"not null" json:"predictionFor"`
	ModelVersion   string    `gorm:"type:varchar(16)" json:"modelVersion"`
	CreatedAt      time.Time `gorm:"index:idx_predictions_device_type_created,priority:3,sort:desc" json:"createdAt"`
}

func (p *Prediction) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return
}
