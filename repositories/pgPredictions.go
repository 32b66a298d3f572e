package repositories

import (
	"context"

	"ecotracker/db"
	"ecotracker/entities"
)

type predictionPgRepository struct {
	db db.Database
}

func NewPredictionPgRepository(database db.Database) PredictionRepository {
	return &predictionPgRepository{db: database}
}

func (r *predictionPgRepository) Create(ctx context.Context, prediction *entities.Prediction) error {
	return translate("create prediction", r.db.GetDB().WithContext(ctx).Create(prediction).Error, nil, nil)
}

func (r *predictionPgRepository) GetLatest(ctx context.Context, deviceID, predictionType string, limit int) ([]entities.Prediction, error) {
	if limit <= 0 {
		limit = 24
	}
	var predictions []entities.Prediction
	err := r.db.GetDB().WithContext(ctx).
		Where("device_id = ? AND prediction_type = ?", deviceID, predictionType).
		Order("created_at DESC").
		Limit(limit).
		Find(&predictions).Error
	return predictions, translate("list predictions", err, nil, nil)
}
