package domain

import (
	"strings"
	"time"
)

// Kind tells whether a transaction moves money in or out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// incomeTokens are the substrings that mark a raw kind token as income.
// The Portuguese forms come from the spoken product locale, the English
// ones cover models that answer in English anyway.
var incomeTokens = []string{"receit", "ganh", "entr", "receiv", "earn", "income"}

// NormalizeKind maps a free-form kind token onto the closed Kind set.
// Anything that does not clearly indicate income is treated as an expense,
// the conservative default for a spending tracker.
func NormalizeKind(raw string) Kind {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, tok := range incomeTokens {
		if strings.Contains(lower, tok) {
			return KindIncome
		}
	}
	return KindExpense
}

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

const (
	// DateLayout is the calendar date format stored on transactions.
	DateLayout = "2006-01-02"
	// TimeLayout is the wall-clock time format stored on transactions.
	TimeLayout = "15:04"
)

// Transaction is one confirmed ledger record. It is immutable once created;
// the only lifecycle operation after creation is deletion.
type Transaction struct {
	ID          string  `json:"id"`
	Kind        Kind    `json:"kind"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Description string  `json:"description"`
}

// DraftTransaction is an interpreted-but-unconfirmed candidate record.
// It only ever exists between interpretation and user confirmation or
// cancellation and is never persisted.
type DraftTransaction struct {
	Kind        Kind    `json:"kind"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date,omitempty"`
	Time        string  `json:"time,omitempty"`
	Description string  `json:"description"`
}

// StampCaptureTime fills the draft's date and time from the given clock
// reading. Capture time wins over anything mentioned in speech.
func (d *DraftTransaction) StampCaptureTime(now time.Time) {
	d.Date = now.Format(DateLayout)
	d.Time = now.Format(TimeLayout)
}

// Summary is the aggregate view over the ledger consumed by the
// presentation layer. Pure fold, no state.
type Summary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
	Count   int     `json:"count"`
}
