package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/t77yq/cronbeat/internal/execlog"
	"github.com/t77yq/cronbeat/internal/jobs"
	"github.com/t77yq/cronbeat/internal/notify"
	"github.com/t77yq/cronbeat/internal/scheduler"
	"github.com/t77yq/cronbeat/internal/storage"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.SetDefault("app.name", "cronbeat")
	viper.SetDefault("scheduler.tick_interval", "60s")
	viper.SetDefault("scheduler.execution_log", "./logs/executions.log")
	viper.SetDefault("history.path", "run_history.db")
	viper.SetDefault("history.retention_days", 30)
	viper.SetDefault("api.base_url", "http://127.0.0.1:8080")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logger.Fatal("Failed to read config file", zap.Error(err))
		}
		logger.Info("No config file found, using defaults")
	}

	// Append-only execution log
	fileRecorder, err := execlog.NewFileRecorder(viper.GetString("scheduler.execution_log"), logger)
	if err != nil {
		logger.Fatal("Failed to open execution log", zap.Error(err))
	}
	defer fileRecorder.Close()

	// Execution history database
	history, err := storage.NewSQLiteRunHistory(logger, viper.GetString("history.path"))
	if err != nil {
		logger.Fatal("Failed to open run history storage", zap.Error(err))
	}
	defer history.Close()

	// Notification sink: NATS when configured, process log otherwise
	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if url := viper.GetString("nats.url"); url != "" {
		nc, err := nats.Connect(url,
			nats.Name(viper.GetString("app.name")),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
			nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
				logger.Warn("NATS disconnected", zap.Error(err))
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
			}))
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer nc.Close()

		js, err := nc.JetStream()
		if err != nil {
			logger.Fatal("Failed to create JetStream context", zap.Error(err))
		}

		natsNotifier, err := notify.NewNATSNotifier(js, logger)
		if err != nil {
			logger.Fatal("Failed to create notifier", zap.Error(err))
		}
		notifier = natsNotifier
		logger.Info("Connected to NATS", zap.String("url", nc.ConnectedUrl()))
	}

	// Every execution attempt goes to the JSONL log, the history database
	// and, on failure, the alert sink.
	recorder := execlog.Tee{
		fileRecorder,
		storage.NewRecorder(history, logger),
		notify.NewFailureAlerter(notifier, logger),
	}

	tasks := jobs.NewAPIClient(viper.GetString("api.base_url"), logger)

	sched, err := scheduler.Init(scheduler.Deps{
		Logger:       logger,
		Recorder:     recorder,
		Notifier:     notifier,
		Tasks:        tasks,
		TickInterval: viper.GetDuration("scheduler.tick_interval"),
	})
	if err != nil {
		logger.Fatal("Failed to initialize scheduler", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched.Start(ctx)

	// Periodically drop execution history past the retention window
	go func() {
		retention := viper.GetInt("history.retention_days")
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -retention)
				if _, err := history.DeleteBefore(ctx, cutoff); err != nil {
					logger.Error("Failed to cleanup old execution history", zap.Error(err))
				}
			}
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	cancel()
	sched.Stop()

	logger.Info("Server shutting down gracefully")
}
