package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fableloop/fables/internal/config"
	"github.com/fableloop/fables/internal/handlers"
	"github.com/fableloop/fables/internal/llm"
	"github.com/fableloop/fables/internal/processor"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Starting Fables API")

	cfg := config.Load()
	if cfg.GeminiAPIKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY is required")
	}

	llmClient := llm.NewClient(
		cfg.GeminiAPIKey,
		cfg.GeminiModelFlash,
		cfg.GeminiModelPro,
		cfg.GeminiModelImage,
		cfg.GeminiModelTTS,
		cfg.GeminiTTSVoice,
		cfg.GeminiAPIEndpoint,
	)

	proc := processor.NewStoryProcessor(llmClient, cfg)
	h := handlers.NewHandler(proc, llmClient, cfg.MaxTopicLength, cfg.TranscribeTimeout)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/stories", h.CreateStory).Methods("POST")
	api.HandleFunc("/stories/ws", h.StoriesWS).Methods("GET")
	api.HandleFunc("/transcriptions", h.Transcribe).Methods("POST")

	// Generation runs synchronously inside the request, so the write timeout
	// must cover text + narration + illustration, not a typical API budget.
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down API...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("API exited")
}
