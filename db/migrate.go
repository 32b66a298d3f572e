package db

import (
	"ecotracker/entities"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

var migrations = []*gormigrate.Migration{
	{
		ID: "202509010001_initial_schema",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&entities.User{},
				&entities.Device{},
				&entities.SensorReading{},
				&entities.Alert{},
				&entities.Prediction{},
			)
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable("predictions", "alerts", "sensor_readings", "devices", "users")
		},
	},
}

// Migrate applies every migration that has not yet run against db.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations)
	return m.Migrate()
}
