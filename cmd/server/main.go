package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/config"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/infra"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/repository"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/router"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker pool and retry cron are wired here (composition root) so that
	// async boleto emission has full access to all infrastructure.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bancoClient := infra.NewBancoClient(cfg.BancoGatewayURL)
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	boletoRepo := repository.NewBoletoRepository(db)
	cobrancaRepo := repository.NewCobrancaRepository(db)

	workerHandlers := &worker.WorkerHandlers{
		Boleto: worker.NewBoletoWorker(bancoClient, boletoRepo, cobrancaRepo, dispatcher, cfg.PDFStoragePath, cfg.CedenteCNPJ),
		Email:  worker.NewEmailWorker(mailer),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		BoletoRepo:     boletoRepo,
		CobrancaRepo:   cobrancaRepo,
		BancoClient:    bancoClient,
		RDB:            rdb,
		CedenteCNPJ:    cfg.CedenteCNPJ,
		PDFStoragePath: cfg.PDFStoragePath,
	})

	r := router.New(cfg, db, rdb, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("previsao-receitas backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
