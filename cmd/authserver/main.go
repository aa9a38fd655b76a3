package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/statushub/statushub/internal/api"
	"github.com/statushub/statushub/internal/config"
	"github.com/statushub/statushub/internal/logger"
	"github.com/statushub/statushub/internal/model"
	"github.com/statushub/statushub/internal/repository/postgres"
	"github.com/statushub/statushub/internal/server"
	"github.com/statushub/statushub/internal/service"
	"github.com/statushub/statushub/internal/token"
)

const defaultPort = "34570"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig(defaultPort)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel).WithService("authserver")

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	tableRepo := postgres.NewTableRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)
	authService := service.NewAuth(tableRepo, tokenManager, logger)

	mux := http.NewServeMux()
	api.NewAuthHandler(authService, logger).Register(mux)

	httpServer := server.NewHTTPServer(fmt.Sprintf(":%s", cfg.HTTP.Port), api.WithLogging(logger, mux), logger)

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(httpServer)

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}
