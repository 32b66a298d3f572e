package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Regenerator refreshes stored forecasts for every active device.
type Regenerator interface {
	RegenerateAll(ctx context.Context, predictionTypes []string) (int, error)
}

// ForecastJob is a cron.Job regenerating predictions of every prediction
// type it was configured with.
type ForecastJob struct {
	logger  *logrus.Entry
	service Regenerator
	types   []string
	timeout time.Duration
}

func NewForecastJob(service Regenerator, types []string, logger *logrus.Entry) *ForecastJob {
	return &ForecastJob{
		logger:  logger,
		service: service,
		types:   types,
		timeout: 10 * time.Minute,
	}
}

func (j *ForecastJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting scheduled forecast regeneration")

	count, err := j.service.RegenerateAll(ctx, j.types)
	if err != nil {
		j.logger.Errorf("forecast regeneration stopped after %d forecasts: %s", count, err)
		return
	}
	j.logger.Infof("regenerated %d forecasts in %s", count, time.Since(start).Round(time.Millisecond))
}
