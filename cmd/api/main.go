package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/voice-ledger/internal/api/handlers"
	"github.com/dvloznov/voice-ledger/internal/api/middleware"
	"github.com/dvloznov/voice-ledger/internal/capture"
	"github.com/dvloznov/voice-ledger/internal/config"
	"github.com/dvloznov/voice-ledger/internal/draft"
	"github.com/dvloznov/voice-ledger/internal/interpret"
	"github.com/dvloznov/voice-ledger/internal/kvstore"
	"github.com/dvloznov/voice-ledger/internal/ledger"
	"github.com/dvloznov/voice-ledger/internal/logger"
	"github.com/dvloznov/voice-ledger/internal/voice"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Durable storage and ledger
	kv, err := kvstore.Open(cfg.StorageBackend, cfg.DataDir, cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open snapshot store")
	}
	defer kv.Close()

	store, err := ledger.Open(ctx, kv, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}

	// Voice pipeline: remote recognizer window + interpreter + reconciler
	recognizer := capture.NewPushRecognizer()
	session := capture.NewSession(recognizer, cfg.CaptureLocale, cfg.CaptureRetryDelay, log)

	model := interpret.NewGeminiModel(cfg.GeminiModel, cfg.GeminiAPIKey)
	interpreter := interpret.New(model, cfg.InterpretTimeout, log)

	reconciler := draft.NewReconciler(store, log)
	pipeline := voice.NewPipeline(session, interpreter, reconciler, store, cfg.NoticeTTL, log)
	defer pipeline.Close()

	// Initialize handlers
	ledgerHandler := handlers.NewLedgerHandler(store, reconciler, log)
	categoriesHandler := handlers.NewCategoriesHandler(store, log)
	voiceHandler := handlers.NewVoiceHandler(pipeline, recognizer, reconciler, log)

	// Create router
	mux := http.NewServeMux()

	// Transactions endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ledgerHandler.ListTransactions(w, r)
		case http.MethodPost:
			ledgerHandler.CreateTransaction(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
			if id == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
				return
			}
			ledgerHandler.DeleteTransaction(w, r, id)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Summary endpoint
	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			ledgerHandler.Summary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Categories endpoints
	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			categoriesHandler.ListCategories(w, r)
		case http.MethodPost:
			categoriesHandler.AddCategory(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/categories/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			name := strings.TrimPrefix(r.URL.Path, "/api/categories/")
			if name == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Category name is required")
				return
			}
			categoriesHandler.RemoveCategory(w, r, name)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Voice endpoints
	mux.HandleFunc("/api/voice/begin", postOnly(voiceHandler.Begin))
	mux.HandleFunc("/api/voice/cancel", postOnly(voiceHandler.Cancel))
	mux.HandleFunc("/api/voice/result", postOnly(voiceHandler.PushResult))
	mux.HandleFunc("/api/voice/notice/dismiss", postOnly(voiceHandler.DismissNotice))
	mux.HandleFunc("/api/voice/draft/cancel", postOnly(voiceHandler.CancelDraft))
	mux.HandleFunc("/api/voice/state", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			voiceHandler.State(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.StorageBackend).Msg("Starting voice ledger server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := pipeline.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close voice pipeline")
	}

	log.Info().Msg("Server exited")
}

func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}
