package draft

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/voice-ledger/internal/domain"
)

// ValidationError names every field that failed confirmation checks.
// Validation errors block confirmation and must be fixed inline; they are
// never silently dropped.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

// Ledger is the subset of the ledger store the reconciler needs.
type Ledger interface {
	AddTransaction(ctx context.Context, data domain.Transaction) (domain.Transaction, error)
}

// Reconciler owns the single in-flight draft. It stamps interpreted drafts
// with capture time, holds them for user review and promotes a confirmed
// draft into the ledger. At most one draft is pending at a time; beginning
// a new one discards the previous (last-write-wins).
type Reconciler struct {
	mu      sync.Mutex
	ledger  Ledger
	pending *domain.DraftTransaction
	now     func() time.Time
	log     zerolog.Logger
}

// NewReconciler creates a reconciler backed by the given ledger.
func NewReconciler(ledger Ledger, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		ledger: ledger,
		now:    time.Now,
		log:    log,
	}
}

// Begin stamps parsed with the current date and time and marks it pending
// confirmation, discarding any prior unconfirmed draft.
func (r *Reconciler) Begin(parsed domain.DraftTransaction) domain.DraftTransaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending != nil {
		r.log.Debug().Msg("Discarding prior unconfirmed draft")
	}

	parsed.StampCaptureTime(r.now())
	r.pending = &parsed
	return parsed
}

// Pending returns the draft awaiting confirmation, if any.
func (r *Reconciler) Pending() (domain.DraftTransaction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil {
		return domain.DraftTransaction{}, false
	}
	return *r.pending, true
}

// Confirm validates the user-edited data and promotes it into the ledger,
// which assigns identity and persists. The pending draft is cleared only on
// success, so a persistence failure leaves it editable for another attempt.
// Confirm also serves manual entry, where no draft is pending; missing
// date/time fields are then stamped with the current clock.
func (r *Reconciler) Confirm(ctx context.Context, edited domain.Transaction) (domain.Transaction, error) {
	if err := validate(edited); err != nil {
		return domain.Transaction{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if edited.Date == "" {
		edited.Date = now.Format(domain.DateLayout)
	}
	if edited.Time == "" {
		edited.Time = now.Format(domain.TimeLayout)
	}

	stored, err := r.ledger.AddTransaction(ctx, edited)
	if err != nil {
		return domain.Transaction{}, err
	}

	r.pending = nil
	return stored, nil
}

// Cancel discards the pending draft with no side effects.
func (r *Reconciler) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
}

func validate(t domain.Transaction) error {
	var fields []string
	if !t.Kind.Valid() {
		fields = append(fields, "kind")
	}
	if t.Amount <= 0 {
		fields = append(fields, "amount")
	}
	if strings.TrimSpace(t.Category) == "" {
		fields = append(fields, "category")
	}
	if strings.TrimSpace(t.Description) == "" {
		fields = append(fields, "description")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
