package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/voice-ledger/internal/domain"
	"github.com/dvloznov/voice-ledger/internal/kvstore"
)

// Storage keys. They match the original browser build so a migrated
// snapshot keeps working.
const (
	transactionsKey = "voz_finance_transactions"
	categoriesKey   = "voz_finance_categories"
)

// Store owns the authoritative transaction list (most-recent-first) and the
// category vocabulary. All mutations go through its methods; each mutation
// persists the whole affected collection and is rolled back in memory if
// persistence fails, so memory and storage never diverge.
type Store struct {
	mu  sync.Mutex
	kv  kvstore.Store
	log zerolog.Logger

	transactions []domain.Transaction
	categories   []string
}

// Open loads both collections from kv. Missing or unreadable snapshots are
// replaced by defaults; a corrupt snapshot is never fatal to startup.
func Open(ctx context.Context, kv kvstore.Store, log zerolog.Logger) (*Store, error) {
	s := &Store{
		kv:         kv,
		log:        log,
		categories: domain.DefaultCategories(),
	}

	if data, ok, err := kv.Load(ctx, transactionsKey); err != nil {
		return nil, fmt.Errorf("ledger.Open: load transactions: %w", err)
	} else if ok {
		var txs []domain.Transaction
		if err := json.Unmarshal(data, &txs); err != nil {
			log.Warn().Err(err).Msg("Discarding corrupt transactions snapshot")
		} else {
			s.transactions = txs
		}
	}

	if data, ok, err := kv.Load(ctx, categoriesKey); err != nil {
		return nil, fmt.Errorf("ledger.Open: load categories: %w", err)
	} else if ok {
		var cats []string
		if err := json.Unmarshal(data, &cats); err != nil || len(cats) == 0 {
			log.Warn().Err(err).Msg("Discarding corrupt categories snapshot")
		} else {
			s.categories = cats
		}
	}

	log.Info().
		Int("transactions", len(s.transactions)).
		Int("categories", len(s.categories)).
		Msg("Ledger loaded")

	return s, nil
}

// AddTransaction assigns a fresh id to data, prepends it to the list and
// persists the whole collection. The stored record is returned.
func (s *Store) AddTransaction(ctx context.Context, data domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data.ID = uuid.NewString()

	prev := s.transactions
	s.transactions = append([]domain.Transaction{data}, s.transactions...)

	if err := s.saveTransactions(ctx); err != nil {
		s.transactions = prev
		return domain.Transaction{}, err
	}

	s.log.Info().
		Str("id", data.ID).
		Str("kind", string(data.Kind)).
		Float64("amount", data.Amount).
		Str("category", data.Category).
		Msg("Transaction added")

	return data, nil
}

// DeleteTransaction removes the record with the given id. A missing id is
// not an error; the unchanged collection is still persisted.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.transactions
	kept := make([]domain.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.transactions = kept

	if err := s.saveTransactions(ctx); err != nil {
		s.transactions = prev
		return err
	}

	if len(kept) < len(prev) {
		s.log.Info().Str("id", id).Msg("Transaction deleted")
	}
	return nil
}

// AddCategory appends name to the vocabulary unless it is already present
// (case-sensitive exact match).
func (s *Store) AddCategory(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c == name {
			return nil
		}
	}

	prev := s.categories
	s.categories = append(append([]string(nil), s.categories...), name)

	if err := s.saveCategories(ctx); err != nil {
		s.categories = prev
		return err
	}

	s.log.Info().Str("category", name).Msg("Category added")
	return nil
}

// RemoveCategory removes name from the vocabulary. Removing the last
// remaining category is silently refused, and transactions already carrying
// the name keep it.
func (s *Store) RemoveCategory(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.categories) <= 1 {
		return nil
	}

	idx := -1
	for i, c := range s.categories {
		if c == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	prev := s.categories
	kept := make([]string, 0, len(s.categories)-1)
	kept = append(kept, s.categories[:idx]...)
	kept = append(kept, s.categories[idx+1:]...)
	s.categories = kept

	if err := s.saveCategories(ctx); err != nil {
		s.categories = prev
		return err
	}

	s.log.Info().Str("category", name).Msg("Category removed")
	return nil
}

// Transactions returns a copy of the ordered transaction list.
func (s *Store) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Transaction(nil), s.transactions...)
}

// Categories returns a copy of the category vocabulary.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.categories...)
}

// Summary folds the transaction list into aggregate totals.
func (s *Store) Summary() domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum domain.Summary
	sum.Count = len(s.transactions)
	for _, t := range s.transactions {
		if t.Kind == domain.KindIncome {
			sum.Income += t.Amount
		} else {
			sum.Expense += t.Amount
		}
	}
	sum.Balance = sum.Income - sum.Expense
	return sum
}

func (s *Store) saveTransactions(ctx context.Context) error {
	data, err := json.Marshal(s.transactions)
	if err != nil {
		return fmt.Errorf("ledger: marshal transactions: %w", err)
	}
	if err := s.kv.Save(ctx, transactionsKey, data); err != nil {
		return fmt.Errorf("ledger: persist transactions: %w", err)
	}
	return nil
}

func (s *Store) saveCategories(ctx context.Context) error {
	data, err := json.Marshal(s.categories)
	if err != nil {
		return fmt.Errorf("ledger: marshal categories: %w", err)
	}
	if err := s.kv.Save(ctx, categoriesKey, data); err != nil {
		return fmt.Errorf("ledger: persist categories: %w", err)
	}
	return nil
}
