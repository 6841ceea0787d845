package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/tradequest/newsintel/internal/alerts"
	"github.com/tradequest/newsintel/internal/analyzer"
	"github.com/tradequest/newsintel/internal/archive"
	"github.com/tradequest/newsintel/internal/bus"
	"github.com/tradequest/newsintel/internal/cache"
	"github.com/tradequest/newsintel/internal/config"
	"github.com/tradequest/newsintel/internal/finnhub"
	"github.com/tradequest/newsintel/internal/logger"
	"github.com/tradequest/newsintel/internal/models"
	"github.com/tradequest/newsintel/internal/scenarios"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var gen analyzer.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := analyzer.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Error("init gemini", slog.Any("err", err))
			os.Exit(1)
		}
		gen = gemini
	} else {
		log.Warn("no GEMINI_API_KEY configured, serving fallback verdicts only")
	}

	var sinks []alerts.Sink
	var archiveClient *archive.Client
	if cfg.Enabled() {
		archiveClient, err = archive.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
		if err != nil {
			log.Error("init archive", slog.Any("err", err))
			os.Exit(1)
		}
		sinks = append(sinks, archiveClient)
	}
	if cfg.FeedEnabled() {
		feed := bus.New(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer feed.Close()
		sinks = append(sinks, feed)
	}

	source := finnhub.New(cfg.FinnhubBaseURL, cfg.FinnhubAPIKey, log)
	memo := cache.New[models.AnalysisVerdict](cfg.CacheCapacity, cfg.CacheTTL)
	ledger := cache.New[struct{}](cfg.LedgerCapacity, cfg.LedgerTTL)
	analysis := analyzer.New(gen, memo, log)

	srv := &server{
		log: log,
		agg: &alerts.Aggregator{
			Source:      source,
			Fallback:    scenarios.Articles,
			Analyzer:    analysis,
			FetchLimit:  cfg.FetchLimit,
			Concurrency: cfg.AnalysisConcurrency,
			Sinks:       sinks,
			Log:         log,
		},
		pub: &alerts.Publisher{
			Source:     source,
			Analyzer:   analysis,
			Ledger:     ledger,
			Interval:   cfg.PollInterval,
			MaxBackoff: cfg.MaxBackoff,
			FetchLimit: cfg.StreamFetchLimit,
			Sinks:      sinks,
			Log:        log,
		},
	}
	if archiveClient != nil {
		srv.health = archiveClient.Health
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Get("/api/news/alerts", srv.handleAlerts)
	r.Get("/api/news/alerts/stream", srv.handleAlertStream)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// WriteTimeout stays zero: the event stream must stay open
		// indefinitely, and a batch of uncached analyses can outlast any
		// sane fixed budget.
	}

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type lister interface {
	List(ctx context.Context) alerts.ListResult
}

type streamer interface {
	Run(ctx context.Context, push func(models.Alert) error) error
}

type server struct {
	log    *slog.Logger
	agg    lister
	pub    streamer
	health func(ctx context.Context) error
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAlerts always answers 200: empty upstream results become the
// scenario fallback, never an error.
func (s *server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	result := s.agg.List(r.Context())
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleAlertStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	err := s.pub.Run(r.Context(), func(alert models.Alert) error {
		payload, err := json.Marshal(alert)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Debug("alert stream closed", slog.Any("err", err))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
