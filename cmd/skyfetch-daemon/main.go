package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/skyfetch/internal/api"
	"github.com/shaiso/skyfetch/internal/config"
	"github.com/shaiso/skyfetch/internal/format"
	"github.com/shaiso/skyfetch/internal/mq"
	"github.com/shaiso/skyfetch/internal/repo"
	"github.com/shaiso/skyfetch/internal/schedule"
	"github.com/shaiso/skyfetch/internal/source"
	"github.com/shaiso/skyfetch/internal/state"
	"github.com/shaiso/skyfetch/internal/storage"
	"github.com/shaiso/skyfetch/internal/supervisor"
	"github.com/shaiso/skyfetch/internal/task"
	"github.com/shaiso/skyfetch/internal/telemetry"
)

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyfetch_daemon_http_requests_total",
		Help: "Total HTTP requests handled by skyfetch-daemon",
	})
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting skyfetch-daemon")

	cfgPath := os.Getenv("SKYFETCH_CONFIG")
	if cfgPath == "" {
		cfgPath = "/etc/skyfetch/skyfetch.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	// База данных — опциональна: без неё нет store(), журнала заданий
	// и статистики областей.
	var jobSink supervisor.JobSink
	var stateSink state.Sink
	var packets task.PacketWriter
	var journal api.Journal
	var areas api.Areas
	if cfg.DatabaseURL != "" {
		pool, err := repo.NewPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("connected to database")

		jobRepo := repo.NewJobRepo(pool)
		packetRepo := repo.NewPacketRepo(pool)
		jobSink = jobRepo
		journal = jobRepo
		stateSink = repo.NewStateRepo(pool)
		packets = packetRepo
		areas = packetRepo
	}

	// Брокер — опционален: без него нет stream() с amqp-источников.
	var conn *mq.Connection
	if cfg.AMQPURL != "" {
		conn, err = mq.NewConnection(cfg.AMQPURL, logger)
		if err != nil {
			logger.Error("failed to connect to broker", "error", err)
			os.Exit(1)
		}
		defer conn.Close()
		logger.Info("connected to broker")
	}

	var sites []source.Site
	if cfg.SitesFile != "" {
		sites, err = source.LoadSites(cfg.SitesFile)
		if err != nil {
			logger.Error("failed to load sites", "path", cfg.SitesFile, "error", err)
			os.Exit(1)
		}
	}

	registry := source.NewRegistry(source.RegistryConfig{
		Sites:  sites,
		Conn:   conn,
		Logger: logger,
	})
	logger.Info("sources registered", "sites", registry.Names())

	fs, err := storage.NewFs(cfg.BaseDir, logger)
	if err != nil {
		logger.Error("failed to prepare storage", "base", cfg.BaseDir, "error", err)
		os.Exit(1)
	}

	factory := task.NewFactory(task.Deps{
		Sources:   registry,
		Converter: format.NewConverter(logger),
		Fs:        fs,
		Packets:   packets,
		Logger:    logger,
	})

	sup := supervisor.New(supervisor.Config{
		MaxWorkers: cfg.MaxWorkers,
		Tick:       cfg.Tick.Std(),
		Factory:    factory,
		Jobs:       jobSink,
		StateSink:  stateSink,
		Logger:     logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sup.Start(ctx)

	cron, err := schedule.New(cfg.Schedules, sup.Submit, logger)
	if err != nil {
		logger.Error("failed to build schedule", "error", err)
		sup.Stop()
		os.Exit(1)
	}
	cron.Start()

	// Создаём API handler
	handler := api.NewHandler(api.Config{
		Engine:  sup,
		Journal: journal,
		Areas:   areas,
		Logger:  logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", cfg.Listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Сначала перестаём принимать запросы, затем дорабатывают задания.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	cron.Stop()
	sup.Stop()

	logger.Info("stopped")
}
