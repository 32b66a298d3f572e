package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Device is an ESP8266 sensor board owned by a user. Readings are matched to
// a device through its MAC address.
type Device struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string     `gorm:"index;type:varchar(36);not null" json:"userId"`
	Name       string     `gorm:"not null" json:"name"`
	IPAddress  string     `json:"ipAddress,omitempty"`
	MacAddress *string    `gorm:"uniqueIndex" json:"macAddress,omitempty"`
	Firmware   string     `json:"firmware,omitempty"`
	IsOnline   bool       `gorm:"default:false" json:"isOnline"`
	LastSeen   *time.Time `json:"lastSeen,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (d *Device) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	return
}
