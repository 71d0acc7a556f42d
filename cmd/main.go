package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chautara/identity/internal/api/http/httpctx"
	"github.com/chautara/identity/internal/api/http/router"
	"github.com/chautara/identity/internal/config"
	"github.com/chautara/identity/internal/logger"
	"github.com/chautara/identity/internal/metrics"
	"github.com/chautara/identity/internal/model"
	"github.com/chautara/identity/internal/repository/postgres"
	"github.com/chautara/identity/internal/server"
	"github.com/chautara/identity/internal/service"
	storage "github.com/chautara/identity/internal/storage/minio"
	"github.com/chautara/identity/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	credentialRepo := postgres.NewCredentialRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	documentRepo := postgres.NewDocumentRepository(db, cfg.Claim.MaxAttempts)
	tokenManager := token.NewJWT(cfg.JWT.Secret)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	tokenService := service.NewTokenService(tokenManager, refreshTokenRepo, logger)
	authService := service.NewAuth(credentialRepo, tokenService, collector, logger)
	registrar := service.NewRegistrar(documentRepo, collector, logger)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	avatarStorage, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	profileService := service.NewProfile(documentRepo, avatarStorage, logger)
	ctxMgr := httpctx.NewManager()

	rt := router.New(authService, registrar, profileService, tokenService, documentRepo, ctxMgr, registry, logger)
	httpServer := server.NewHTTPServer(rt.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

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
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

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

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
