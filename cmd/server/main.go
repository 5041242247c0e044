package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/forum-service/internal/config"
	"github.com/maxviazov/forum-service/internal/handler"
	"github.com/maxviazov/forum-service/internal/logger"
	"github.com/maxviazov/forum-service/internal/render"
	"github.com/maxviazov/forum-service/internal/repository"
	"github.com/maxviazov/forum-service/internal/repository/sqlstore"
	"github.com/maxviazov/forum-service/internal/service"
)

func main() {
	cfgPath := "config.yaml"
	if p := os.Getenv("APP_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg, &appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("❌ Database connection failed")
	}
	defer store.Close()

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			appLogger.Fatal().Err(err).Msg("❌ Migrations failed")
		}
	}

	repos := sqlstore.NewRepositories(store.DB())
	deps := service.Deps{
		Tx:            repos.Tx,
		Users:         repos.Users,
		Planes:        repos.Planes,
		Nodes:         repos.Nodes,
		Topics:        repos.Topics,
		Replies:       repos.Replies,
		Favorites:     repos.Favorites,
		Notifications: repos.Notifications,
		Transactions:  repos.Transactions,
		Votes:         repos.Votes,
		Renderer:      render.NewMarkdown(),
		MaxPageSize:   cfg.Pagination.MaxSize,
	}
	services := handler.Services{
		Users:    service.NewUserService(deps, appLogger),
		Nodes:    service.NewNodeService(deps, appLogger),
		Topics:   service.NewTopicService(deps, appLogger),
		Replies:  service.NewReplyService(deps, appLogger),
		Activity: service.NewActivityService(deps, appLogger),
	}

	if cfg.App.Env == "prod" || cfg.App.Env == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler.Register(router, repos.Pinger, services, appLogger, handler.WithBaseURL(cfg.App.BaseURL))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info().Str("addr", srv.Addr).Str("driver", cfg.Database.Driver).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.App.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("server shutdown failed")
	}
	appLogger.Info().Msg("server stopped")
}
