package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"punthub/config"
	"punthub/database"
	"punthub/jobs"
	"punthub/logger"
	"punthub/metrics"
	"punthub/routes"
	"punthub/services"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)
	sugar := zl.Sugar()

	database.Connect()

	services.MaxPayout = cfg.MaxPayout
	recorder := services.InitLedger(database.DB, 1024, sugar)
	odds := services.InitOdds(cfg.RedisAddr, sugar)
	scores := services.NewScoreClient(cfg.ScoreAPIURL, sugar)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler := jobs.NewScheduler(database.DB, cfg, scores, odds, sugar)
	scheduler.Start(ctx)

	metricsSrv := metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		if sqlDB, err := database.DB.DB(); err == nil {
			return sqlDB.PingContext(ctx)
		}
		return nil
	})

	app := fiber.New()
	routes.Setup(app)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	sugar.Infow("server starting", "addr", addr)

	go func() {
		if err := app.Listen(addr); err != nil {
			sugar.Fatalw("failed to start server", "error", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	sugar.Info("gracefully shutting down")
	cancel()
	if err := app.Shutdown(); err != nil {
		sugar.Errorw("server forced to shutdown", "error", err)
	}
	_ = metricsSrv.Shutdown(context.Background())
	recorder.Stop()
	sugar.Info("server exited cleanly")
}
