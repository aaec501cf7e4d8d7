package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/voice-ledger/internal/api/middleware"
	"github.com/dvloznov/voice-ledger/internal/capture"
	"github.com/dvloznov/voice-ledger/internal/domain"
	"github.com/dvloznov/voice-ledger/internal/draft"
	"github.com/dvloznov/voice-ledger/internal/ledger"
	"github.com/dvloznov/voice-ledger/internal/voice"
)

// LedgerHandler handles transaction endpoints.
type LedgerHandler struct {
	store      *ledger.Store
	reconciler *draft.Reconciler
	log        zerolog.Logger
}

// NewLedgerHandler creates a new transactions handler.
func NewLedgerHandler(store *ledger.Store, reconciler *draft.Reconciler, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{
		store:      store,
		reconciler: reconciler,
		log:        log,
	}
}

// ListTransactions handles GET /api/transactions
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions := h.store.Transactions()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// CreateTransaction handles POST /api/transactions. The body is the
// user-edited draft (or a manual entry); it goes through the reconciler so
// validation applies on every path into the ledger.
func (h *LedgerHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var body domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stored, err := h.reconciler.Confirm(r.Context(), body)
	if err != nil {
		var verr *draft.ValidationError
		if errors.As(err, &verr) {
			middleware.WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  "Validation failed",
				"fields": verr.Fields,
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to store transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, stored)
}

// DeleteTransaction handles DELETE /api/transactions/:id
func (h *LedgerHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.DeleteTransaction(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Summary handles GET /api/summary
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.store.Summary())
}

// CategoriesHandler handles category vocabulary endpoints.
type CategoriesHandler struct {
	store *ledger.Store
	log   zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(store *ledger.Store, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{store: store, log: log}
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.store.Categories()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// AddCategory handles POST /api/categories
func (h *CategoriesHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if err := h.store.AddCategory(r.Context(), name); err != nil {
		h.log.Error().Err(err).Str("category", name).Msg("Failed to add category")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to add category")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.store.Categories(),
	})
}

// RemoveCategory handles DELETE /api/categories/:name
func (h *CategoriesHandler) RemoveCategory(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.store.RemoveCategory(r.Context(), name); err != nil {
		h.log.Error().Err(err).Str("category", name).Msg("Failed to remove category")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to remove category")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.store.Categories(),
	})
}

// VoiceHandler handles the voice capture surface. The browser owns the
// microphone; these endpoints drive the server-side session window and
// receive the remote recognizer's outcome.
type VoiceHandler struct {
	pipeline   *voice.Pipeline
	recognizer *capture.PushRecognizer
	reconciler *draft.Reconciler
	log        zerolog.Logger
}

// NewVoiceHandler creates a new voice handler.
func NewVoiceHandler(pipeline *voice.Pipeline, recognizer *capture.PushRecognizer, reconciler *draft.Reconciler, log zerolog.Logger) *VoiceHandler {
	return &VoiceHandler{
		pipeline:   pipeline,
		recognizer: recognizer,
		reconciler: reconciler,
		log:        log,
	}
}

// Begin handles POST /api/voice/begin
func (h *VoiceHandler) Begin(w http.ResponseWriter, r *http.Request) {
	if err := h.pipeline.Begin(); err != nil {
		if errors.Is(err, capture.ErrAlreadyListening) {
			middleware.WriteError(w, http.StatusConflict, "Capture already in progress")
			return
		}
		var capErr *capture.Error
		if errors.As(err, &capErr) {
			middleware.WriteError(w, http.StatusServiceUnavailable, capErr.Message)
			return
		}
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to begin capture")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"state": string(h.pipeline.State())})
}

// Cancel handles POST /api/voice/cancel
func (h *VoiceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.pipeline.Cancel(); err != nil && !errors.Is(err, capture.ErrNotListening) {
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to cancel capture")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"state": string(h.pipeline.State())})
}

// PushResult handles POST /api/voice/result. The remote recognizer posts
// either its final transcript or a platform error code.
func (h *VoiceHandler) PushResult(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Transcript string `json:"transcript"`
		ErrorCode  string `json:"error_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var accepted bool
	if body.ErrorCode != "" {
		accepted = h.recognizer.PushError(body.ErrorCode)
	} else {
		accepted = h.recognizer.PushTranscript(body.Transcript)
	}

	if !accepted {
		middleware.WriteError(w, http.StatusConflict, "No capture session in progress")
		return
	}
	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// State handles GET /api/voice/state. It reports the composite capture
// state, the visible notice (if any) and the pending draft (if any), which
// is everything the presentation layer polls for.
func (h *VoiceHandler) State(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"state": string(h.pipeline.State()),
	}
	if n := h.pipeline.Notice(); n != nil {
		resp["notice"] = n
	}
	if d, ok := h.reconciler.Pending(); ok {
		resp["draft"] = d
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// DismissNotice handles POST /api/voice/notice/dismiss
func (h *VoiceHandler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	h.pipeline.DismissNotice()
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// CancelDraft handles POST /api/voice/draft/cancel
func (h *VoiceHandler) CancelDraft(w http.ResponseWriter, r *http.Request) {
	h.reconciler.Cancel()
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
