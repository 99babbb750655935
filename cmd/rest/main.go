package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lumina-be/internal/bootstrap"
	"lumina-be/internal/config"
	"lumina-be/internal/pkg/logger"
	"lumina-be/internal/server"
	"lumina-be/internal/tracer"
	"lumina-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	// 2. Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing, sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.ParseLogLevel(cfg.Database.LogLevel))
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg, sysLogger)
	defer container.Close()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			sysLogger.Error("SERVER", "Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		sysLogger.Error("SERVER", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
