package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"review-scheduler/core/config"
	"review-scheduler/core/constants"
	"review-scheduler/core/database"
	"review-scheduler/core/logger"
	"review-scheduler/core/middleware"
	coreRedis "review-scheduler/core/redis"
	"review-scheduler/modules/availability"
	"review-scheduler/modules/notification"
	"review-scheduler/modules/notification/worker"
	"review-scheduler/modules/scheduling"
	schedService "review-scheduler/modules/scheduling/service"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Run boots the API: config, logging, storage, the asynq worker and the
// echo server with all modules wired. Blocks until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Server.LogLevel)
	logger.Info("Starting review-scheduler", "env", cfg.Environment)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), constants.DefaultRequestTimeout)
	defer cancelMigrate()
	if err := database.Migrate(migrateCtx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	redisClient, err := coreRedis.Init(cfg.Redis)
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			logger.Info("Request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	mw := middleware.New(cfg)

	availabilitySvc := availability.Init(e, db, mw)
	notificationSvc := notification.Init(e, db, mw)

	notifier := worker.NewAsynqNotifier(asynqClient)
	locker := schedService.NewRedisLocker(redisClient)
	scheduling.Init(e, db, mw, availabilitySvc, locker, notifier, cfg.Scheduling.DefaultSessionMinutes)

	asynqServer := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Logger:      asynqLogger{},
	})
	mux := asynq.NewServeMux()
	worker.NewHandler(notificationSvc).Register(mux)

	if err := asynqServer.Start(mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.Info("HTTP server listening", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	asynqServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// asynqLogger routes asynq's internal logging through the app logger.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) { logger.Debug(fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...interface{})  { logger.Info(fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...interface{})  { logger.Warn(fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...interface{}) { logger.Error(fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...interface{}) { logger.Error(fmt.Sprint(args...)) }
