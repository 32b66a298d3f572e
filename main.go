package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecotracker/confs"
	"ecotracker/db"
	"ecotracker/jobs"
	"ecotracker/mqttingest"
	"ecotracker/server"

	"github.com/sirupsen/logrus"
)

func main() {
	// load config
	cfg, err := confs.LoadConfig()
	if err != nil {
		logrus.Fatalf("error loading config: %s", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	log := logger.WithField("service", "ecotracker")

	database, err := db.Connect(cfg.Database, log.WithField("component", "db"), level >= logrus.DebugLevel)
	if err != nil {
		log.Fatalf("failed to connect to DB: %s", err)
	}

	srv := server.NewServer(cfg, database, log)

	var scheduler *jobs.JobScheduler
	if cfg.Schedule != "" {
		job := jobs.NewForecastJob(srv.Pipeline, cfg.Types, log.WithField("component", "forecast-job"))
		scheduler, err = jobs.NewJobScheduler(log.WithField("component", "scheduler"), cfg.Schedule, job)
		if err != nil {
			log.Fatalf("could not schedule forecasts: %s", err)
		}
		scheduler.Start()
		log.Infof("next forecast regeneration at %s", scheduler.NextRun().Format(time.RFC3339))
	}

	var broker *mqttingest.Client
	if cfg.BrokerURL != "" {
		broker, err = mqttingest.NewClient(mqttingest.Options{BrokerURL: cfg.BrokerURL, ClientID: cfg.ClientID, Log: log.WithField("component", "mqtt")})
		if err != nil {
			log.Fatalf("could not connect to MQTT broker: %s", err)
		}
		ingest := mqttingest.NewService(broker, srv.Pipeline, cfg.Topic, log.WithField("component", "mqtt"))
		if err := ingest.Start(); err != nil {
			log.Fatalf("could not start MQTT ingestion: %s", err)
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Infof("received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			log.Errorf("http server failed: %s", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("http shutdown: %s", err)
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	if broker != nil {
		broker.Close()
	}
	if err := database.Close(); err != nil {
		log.Warnf("closing database: %s", err)
	}
	log.Info("bye")
}
