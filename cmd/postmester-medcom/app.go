package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/odense-rpa/postmester-medcom/common/database"
	logpkg "github.com/odense-rpa/postmester-medcom/common/logger"
	"github.com/odense-rpa/postmester-medcom/common/mqtt"
	"github.com/odense-rpa/postmester-medcom/common/redis"
	"github.com/odense-rpa/postmester-medcom/internal/config"
	"github.com/odense-rpa/postmester-medcom/internal/ensurer"
	"github.com/odense-rpa/postmester-medcom/internal/nexus"
	"github.com/odense-rpa/postmester-medcom/internal/reporting"
	"github.com/odense-rpa/postmester-medcom/internal/rules"
	"github.com/odense-rpa/postmester-medcom/internal/service"
	"github.com/odense-rpa/postmester-medcom/internal/tracking"
	"github.com/odense-rpa/postmester-medcom/internal/workqueue"
)

func run(ctx context.Context, opts *RootOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "postmester-medcom")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	table, err := rules.Load(opts.ExcelFile)
	if err != nil {
		return err
	}
	logger.Info("Rule table loaded",
		zap.String("source", table.Source()),
		zap.Int("rules", table.Len()),
	)

	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	queue := workqueue.NewRepository(db, cfg.Workqueue.Name, logger)
	if err := queue.EnsureSchema(ctx); err != nil {
		return err
	}

	backend := nexus.NewClient(nexus.Options{
		BaseURL: cfg.Nexus.BaseURL,
		Token:   cfg.Nexus.Token,
		Timeout: cfg.Nexus.Timeout,
	}, logger)

	if opts.Queue {
		populator := service.NewPopulator(queue, backend, cfg.Nexus.WorklistName, cfg.Nexus.WorklistPages, logger)
		added, err := populator.Refresh(ctx)
		if err != nil {
			return err
		}
		logger.Info("Queue refreshed", zap.Int("added", added))
		return nil
	}

	redisClient := redis.NewRedisClient(&cfg.Redis)
	defer redis.Close(redisClient)
	if err := redis.Ping(ctx, redisClient); err != nil {
		return err
	}

	mqttClient, err := mqtt.NewClient(&cfg.MQTT, logger)
	if err != nil {
		return err
	}
	defer mqttClient.Disconnect(250)

	reporter := reporting.NewStreamReporter(cfg.Reporting, redisClient, logger)
	tracker := tracking.NewMQTTTracker(cfg.Tracking, mqttClient, logger)
	ensurers := ensurer.NewSet(backend, reporter, logger)

	processor := service.NewProcessor(queue, backend, ensurers, tracker, table, cfg.ProcessName, logger)
	if _, err := processor.Run(ctx); err != nil {
		logger.Error("Run aborted", zap.Error(err))
		return err
	}
	return nil
}
