package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"greenhouse-forecaster/analytics"
	"greenhouse-forecaster/config"
	"greenhouse-forecaster/handlers"
	"greenhouse-forecaster/logger"
	"greenhouse-forecaster/notify"
	"greenhouse-forecaster/render"
	"greenhouse-forecaster/scheduler"
	"greenhouse-forecaster/source"
	"greenhouse-forecaster/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load channel catalog")
	}

	store, closeStore := openStore(cfg, log)
	defer closeStore()

	opts := analytics.EngineOptions{
		Forecaster: analytics.NewForecaster(cfg.Horizon, cfg.Step),
		Fusion: analytics.FusionOptions{
			PadFraction:    cfg.PadFraction,
			DiscreteMargin: cfg.DiscreteMargin,
		},
		OnOutcome: handlers.RecordOutcome,
	}

	if len(cfg.KafkaBrokers) > 0 {
		notifier := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer notifier.Close()
		opts.Notifier = notifier
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("Forecast events enabled")
	}

	if cfg.GraphDir != "" {
		graphs, err := render.NewGraphWriter(cfg.GraphDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare graph directory")
		}
		opts.Graphs = graphs
	}

	series := analytics.NewSeriesStore(openSource(cfg), cfg.SourceResults, log)
	engine := analytics.NewEngine(catalog, series, analytics.NewPublisher(store, log), opts, log)

	sched := scheduler.New(log)
	forecastJob := scheduler.ForecastJob{Engine: engine, Timeout: cfg.ForecastInterval}
	refreshJob := scheduler.RefreshJob{Engine: engine, Timeout: cfg.DisplayInterval}
	if err := sched.Every(cfg.ForecastInterval, forecastJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule forecast job")
	}
	if err := sched.Every(cfg.DisplayInterval, refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule display refresh")
	}

	r := mux.NewRouter()
	handlers.NewViewHandler(engine, log).Routes(r)
	r.Path("/metrics").Handler(promhttp.Handler())

	srv := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// first run right away so views have data before the first tick
	go func() {
		sched.RunNow(refreshJob)
		sched.RunNow(forecastJob)
		sched.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func openSource(cfg *config.Config) source.Source {
	if cfg.SourceKind == config.SourceCSV {
		return source.NewCSVFile(cfg.MasterCSVPath)
	}
	return source.NewThingSpeak(cfg.ThingSpeakURL, cfg.ThingSpeakChannelID, cfg.ThingSpeakAPIKey)
}

func openStore(cfg *config.Config, log zerolog.Logger) (analytics.ForecastStore, func()) {
	switch cfg.ForecastStore {
	case config.StoreRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := storage.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
		store := storage.NewRedisStore(client, 0)
		return store, func() { store.Close() }

	case config.StoreFile:
		store, err := storage.NewFileStore(cfg.ArtifactDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare artifact directory")
		}
		log.Info().Str("dir", cfg.ArtifactDir).Msg("Using CSV forecast artifacts")
		return store, func() {}

	default:
		return storage.NewMemoryStore(), func() {}
	}
}
