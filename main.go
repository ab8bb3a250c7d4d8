package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "clinic_queue/docs"
	"clinic_queue/internal/auth"
	"clinic_queue/internal/config"
	"clinic_queue/internal/estimation"
	"clinic_queue/internal/handlers"
	"clinic_queue/internal/logger"
	"clinic_queue/internal/metrics"
	"clinic_queue/internal/service"
	"clinic_queue/internal/storage"
	"clinic_queue/internal/tasks"
	"clinic_queue/internal/ws"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// @Title						Электронная очередь клиники
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").WithError(err).Fatal("Ошибка загрузки конфигурации")
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("Ошибка подключения к хранилищу")
	}

	var engineOpts []estimation.Option
	redisClient, err := storage.InitRedis(ctx, cfg.Redis)
	if err != nil {
		// Кэш статистики необязателен.
		log.WithError(err).Warn("Redis недоступен, статистика не кэшируется")
	} else if redisClient != nil {
		defer redisClient.Close()
		engineOpts = append(engineOpts, estimation.WithCache(estimation.NewRedisStatsCache(redisClient, cfg.StatsCacheTTL, log)))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	hub := ws.NewHub(log, m)
	go hub.Run(ctx)

	engine := estimation.NewEngine(store, log, engineOpts...)
	svc := service.NewQueueService(store, engine, hub, log, service.WithMetrics(m))

	scheduler, err := tasks.InitScheduler(svc, cfg.NoShowSweepSpec, log)
	if err != nil {
		log.WithError(err).Fatal("Ошибка запуска cron-планировщика")
	}
	defer scheduler.Stop()

	issuer := auth.NewIssuer(cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
	router := handlers.NewRouter(handlers.RouterConfig{
		Queues:   handlers.NewHandler(svc, store, log),
		Auth:     handlers.NewAuthHandler(store, issuer, log),
		Issuer:   issuer,
		Hub:      hub,
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).WithField("storage", cfg.StorageDriver).Info("Сервер запущен")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Ошибка запуска сервера")
		}
	}()

	<-ctx.Done()
	log.Info("Остановка сервера")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Ошибка остановки сервера")
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.StorageDriver == config.DriverMemory {
		return storage.NewMemoryStore(), nil
	}
	db, err := storage.ConnectDatabase(cfg.DB.DSN())
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(db); err != nil {
		return nil, err
	}
	return storage.NewGormStore(db), nil
}
