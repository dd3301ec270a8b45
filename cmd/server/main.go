package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"smartscribe/internal/api"
	"smartscribe/internal/auth"
	"smartscribe/internal/blob"
	"smartscribe/internal/config"
	"smartscribe/internal/core"
	"smartscribe/internal/store"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping default")
	}

	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer dbStore.Close()

	fileStore, err := blob.NewStore(cfg.UploadsDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize file store")
	}

	summarizer, err := core.NewGeminiSummarizer(context.Background(), cfg.GeminiAPIKey, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize summarizer")
	}
	defer summarizer.Close()

	tokens := auth.NewManager(cfg.JWTSecret)
	noteService := core.NewNoteService(dbStore, fileStore, log)
	userService := core.NewUserService(dbStore, tokens)

	handler := api.NewHandler(noteService, userService, summarizer, tokens, log)
	router := api.NewRouter(handler, fileStore.Root(), log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // summarization calls can take a while
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited gracefully")
}
