// cmd/worker/main.go
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/jiraiya78/lispbatch/internal/batch"
	"github.com/jiraiya78/lispbatch/internal/bus"
	"github.com/jiraiya78/lispbatch/internal/engine"
	"github.com/jiraiya78/lispbatch/internal/scripts"
	"github.com/jiraiya78/lispbatch/internal/settings"
	"github.com/jiraiya78/lispbatch/pkg/schema"
)

type config struct {
	NATSURL       string
	JobSubject    string
	WorkerQueue   string
	ResultSubject string
	SettingsFile  string
	EnginePath    string
}

func loadConfig() (config, error) {
	cfg := config{
		NATSURL:       getenv("NATS_URL", "nats://127.0.0.1:4222"),
		JobSubject:    getenv("BATCH_SUBJECT", "lispbatch.jobs"),
		WorkerQueue:   getenv("BATCH_QUEUE", "lispbatch-workers"),
		ResultSubject: getenv("BATCH_RESULT_SUBJECT", "lispbatch.runs"),
		SettingsFile:  getenv("SETTINGS_FILE", settings.DefaultFile),
		EnginePath:    getenv("ACAD_LOCATION", ""),
	}
	if cfg.JobSubject == cfg.ResultSubject {
		return config{}, fmt.Errorf("BATCH_SUBJECT and BATCH_RESULT_SUBJECT must differ (both %q)", cfg.JobSubject)
	}
	return cfg, nil
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		fatal(logger, "load config", err)
	}

	stored, err := settings.Load(cfg.SettingsFile)
	if err != nil {
		fatal(logger, "load settings", err, "settings_file", cfg.SettingsFile)
	}
	if cfg.EnginePath == "" {
		cfg.EnginePath = stored.EnginePath
	}
	logger.Info("worker starting",
		"nats_url", cfg.NATSURL,
		"job_subject", cfg.JobSubject,
		"queue", cfg.WorkerQueue,
		"result_subject", cfg.ResultSubject,
		"engine_path", cfg.EnginePath,
	)

	nc, err := bus.Connect(cfg.NATSURL)
	if err != nil {
		fatal(logger, "connect to NATS", err, "nats_url", cfg.NATSURL)
	}
	defer nc.Close()
	logger.Info("connected to NATS", "nats_url", cfg.NATSURL)

	_, err = nc.QueueSubscribeJSON(cfg.JobSubject, cfg.WorkerQueue, func(data []byte) {
		handleRequest(data, cfg, nc, logger)
	})
	if err != nil {
		fatal(logger, "subscribe worker", err, "job_subject", cfg.JobSubject, "queue", cfg.WorkerQueue)
	}
	logger.Info("listening for batch requests", "subject", cfg.JobSubject, "queue", cfg.WorkerQueue)

	select {}
}

func handleRequest(data []byte, cfg config, nc *bus.Client, logger *slog.Logger) {
	var req schema.BatchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Error("malformed batch request", "err", err)
		return
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	runLogger := logger.With("run_id", req.RunID)
	runLogger.Info("received batch request", "documents", len(req.Documents), "scripts", len(req.Scripts))

	enginePath := req.EnginePath
	if enginePath == "" {
		enginePath = cfg.EnginePath
	}

	var reg scripts.Registry
	for _, ref := range req.Scripts {
		if err := reg.Add(ref.Path); err != nil {
			runLogger.Warn("skipping script", "path", ref.Path, "err", err)
			continue
		}
		if !ref.Enabled {
			reg.SetEnabled(ref.Path, false)
		}
	}

	start := time.Now()
	col := &batch.Collector{RunID: req.RunID}
	runner := &batch.Runner{
		Launcher: engine.NewAutoCAD(),
		Emitter: batch.MultiEmitter(col, &natsEmitter{
			nc:      nc,
			subject: cfg.ResultSubject,
			runID:   req.RunID,
			logger:  runLogger,
		}),
		Timings: batch.DefaultTimings(),
		Logger:  runLogger,
	}
	sum := runner.Run(enginePath, req.Documents, &reg)

	done := schema.BatchDone{
		RunID:      req.RunID,
		Total:      sum.Total,
		Succeeded:  sum.Succeeded,
		Failed:     sum.Failed(),
		DurationMs: time.Since(start).Milliseconds(),
		StatusLog:  col.Events,
		HappenedAt: time.Now().Unix(),
	}
	if err := nc.PublishJSON(cfg.ResultSubject+".done", done); err != nil {
		runLogger.Error("publish batch summary failed", "subject", cfg.ResultSubject+".done", "err", err)
	}
	runLogger.Info("completed batch request", "total", done.Total, "succeeded", done.Succeeded, "duration_ms", done.DurationMs)
}

// natsEmitter forwards orchestrator events to the bus as they happen, so a
// caller can follow a run live instead of waiting for the summary.
type natsEmitter struct {
	nc      *bus.Client
	subject string
	runID   string
	logger  *slog.Logger
}

func (e *natsEmitter) Status(message string, severity schema.Severity) {
	evt := schema.StatusEvent{
		RunID:      e.runID,
		Message:    message,
		Severity:   severity,
		HappenedAt: time.Now().Unix(),
	}
	if err := e.nc.PublishJSON(e.subject+".status", evt); err != nil {
		e.logger.Error("publish status event failed", "err", err)
	}
}

func (e *natsEmitter) Progress(current, total int) {
	p := schema.Progress{
		RunID:   e.runID,
		Current: current,
		Total:   total,
		Percent: batch.ProgressPercent(current, total),
	}
	if err := e.nc.PublishJSON(e.subject+".progress", p); err != nil {
		e.logger.Error("publish progress failed", "err", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, "err", err)
	logger.Error(msg, attrs...)
	os.Exit(1)
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
