package repositories

import (
	"context"
	"time"

	"ecotracker/db"
	"ecotracker/entities"
	"ecotracker/errs"
)

type alertPgRepository struct {
	db db.Database
}

func NewAlertPgRepository(database db.Database) AlertRepository {
	return &alertPgRepository{db: database}
}

func (r *alertPgRepository) Create(ctx context.Context, alert *entities.Alert) error {
	return translate("create alert", r.db.GetDB().WithContext(ctx).Create(alert).Error, nil, nil)
}

func (r *alertPgRepository) GetByID(ctx context.Context, id string) (*entities.Alert, error) {
	var alert entities.Alert
	err := r.db.GetDB().WithContext(ctx).Where("id = ?", id).First(&alert).Error
	if err != nil {
		return nil, translate("get alert", err, errs.ErrAlertNotFound, nil)
	}
	return &alert, nil
}

func (r *alertPgRepository) GetUnreadByDeviceID(ctx context.Context, deviceID string, limit int) ([]entities.Alert, error) {
	if limit <= 0 {
		limit = 10
	}
	var alerts []entities.Alert
	err := r.db.GetDB().WithContext(ctx).
		Where("device_id = ? AND is_read = ?", deviceID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, translate("list unread alerts", err, nil, nil)
}

func (r *alertPgRepository) MarkRead(ctx context.Context, id string) error {
	res := r.db.GetDB().WithContext(ctx).Model(&entities.Alert{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_read":    true,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return translate("mark alert read", res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return errs.ErrAlertNotFound
	}
	return nil
}
