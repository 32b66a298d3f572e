package repositories

import (
	"context"
	"time"

	"ecotracker/db"
	"ecotracker/entities"
	"ecotracker/errs"
)

type devicePgRepository struct {
	db db.Database
}

func NewDevicePgRepository(database db.Database) DeviceRepository {
	return &devicePgRepository{db: database}
}

func (r *devicePgRepository) Create(ctx context.Context, device *entities.Device) error {
	err := r.db.GetDB().WithContext(ctx).Create(device).Error
	return translate("create device", err, nil, errs.ErrDeviceAlreadyExists)
}

func (r *devicePgRepository) GetByID(ctx context.Context, id string) (*entities.Device, error) {
	var device entities.Device
	err := r.db.GetDB().WithContext(ctx).Where("id = ?", id).First(&device).Error
	if err != nil {
		return nil, translate("get device", err, errs.ErrDeviceNotFound, nil)
	}
	return &device, nil
}

func (r *devicePgRepository) GetByMacAddress(ctx context.Context, mac string) (*entities.Device, error) {
	var device entities.Device
	err := r.db.GetDB().WithContext(ctx).Where("mac_address = ?", mac).First(&device).Error
	if err != nil {
		return nil, translate("get device by mac", err, errs.ErrDeviceNotFound, nil)
	}
	return &device, nil
}

func (r *devicePgRepository) GetByUserID(ctx context.Context, userID string) ([]entities.Device, error) {
	var devices []entities.Device
	err := r.db.GetDB().WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&devices).Error
	return devices, translate("list devices by user", err, nil, nil)
}

func (r *devicePgRepository) GetAll(ctx context.Context) ([]entities.Device, error) {
	var devices []entities.Device
	err := r.db.GetDB().WithContext(ctx).Find(&devices).Error
	return devices, translate("list devices", err, nil, nil)
}

func (r *devicePgRepository) UpdateStatus(ctx context.Context, id string, online bool, lastSeen time.Time) error {
	res := r.db.GetDB().WithContext(ctx).Model(&entities.Device{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_online": online,
		"last_seen": lastSeen,
	})
	if res.Error != nil {
		return translate("update device status", res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return errs.ErrDeviceNotFound
	}
	return nil
}
