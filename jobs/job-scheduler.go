package jobs

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type JobScheduler struct {
	scheduler *cron.Cron
	logger    *logrus.Entry
	job       cron.Job
	jobId     cron.EntryID
}

// NewJobScheduler schedules job on a cron expression. Six-field expressions
// are read with a leading seconds field.
func NewJobScheduler(logger *logrus.Entry, frequency string, job cron.Job) (*JobScheduler, error) {
	opts := []cron.Option{cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))}
	if strings.Count(strings.TrimSpace(frequency), " ") == 5 {
		logger.Warn("scheduling with second precision")
		opts = append(opts, cron.WithSeconds())
	}
	scheduler := cron.New(opts...)

	js := &JobScheduler{
		scheduler: scheduler,
		logger:    logger,
		job:       job,
	}
	if job == nil {
		return js, nil
	}

	jobId, err := scheduler.AddJob(frequency, job)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", frequency, err)
	}
	js.jobId = jobId
	logger.Infof("scheduled job with cron expression '%s'", frequency)
	return js, nil
}

func (js *JobScheduler) Start() {
	js.scheduler.Start()
}

func (js *JobScheduler) NextRun() time.Time {
	return js.scheduler.Entry(js.jobId).Next
}

func (js *JobScheduler) Stop() {
	js.scheduler.Remove(js.jobId)
	<-js.scheduler.Stop().Done()
}
