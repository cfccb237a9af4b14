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

	"github.com/avillegas/roster-stats-service/internal/config"
	"github.com/avillegas/roster-stats-service/internal/handler"
	"github.com/avillegas/roster-stats-service/internal/logger"
	repo "github.com/avillegas/roster-stats-service/internal/repository"
	"github.com/avillegas/roster-stats-service/internal/repository/postgres"
	"github.com/avillegas/roster-stats-service/internal/service"
)

func main() {
	// Load application config
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("logger initialization failed: %v", err)
	}

	pg, err := repo.New(context.Background(), cfg, &appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pg.Close()

	pool := pg.Pool()
	teams := postgres.NewTeamRepository(pool)
	players := postgres.NewPlayerRepository(pool)
	events := postgres.NewEventRepository(pool)
	evaluations := postgres.NewEvaluationRepository(pool)
	tx := postgres.NewTxManager(pool)

	teamSvc := service.NewTeamService(teams, appLogger)
	rosterSvc := service.NewRosterService(players, teams, evaluations, tx, appLogger)
	eventSvc := service.NewEventService(events, players, evaluations, tx, appLogger)
	evalSvc := service.NewEvaluationService(evaluations, players, events, tx, appLogger)
	dashSvc := service.NewDashboardService(players, events, appLogger)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	handler.Register(engine, postgres.NewPinger(pool), teamSvc, rosterSvc, eventSvc, evalSvc, dashSvc)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		appLogger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("graceful shutdown failed")
	}
	appLogger.Info().Msg("server stopped")
}
