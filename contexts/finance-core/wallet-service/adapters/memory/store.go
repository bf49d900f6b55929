package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"reelfund/contexts/finance-core/wallet-service/domain/entities"
	domainerrors "reelfund/contexts/finance-core/wallet-service/domain/errors"
	"reelfund/contexts/finance-core/wallet-service/ports"
)

// Store is the in-memory repository used by tests and local development.
// A single mutex stands in for the database's per-row atomic updates, so the
// conditional transitions behave exactly like the postgres adapter.
type Store struct {
	mu sync.Mutex

	accounts     map[string]entities.Account
	transactions map[string]entities.Transaction
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]entities.Account),
		transactions: make(map[string]entities.Transaction),
	}
}

// SeedAccount registers an account with a starting balance and reputation.
func (s *Store) SeedAccount(userID string, balance int64, reputation int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.accounts[userID] = entities.Account{
		UserID:     userID,
		Balance:    balance,
		Reputation: reputation,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *Store) GetAccount(_ context.Context, userID string) (entities.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[strings.TrimSpace(userID)]
	if !ok {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	return account, nil
}

func (s *Store) CreditWithLog(_ context.Context, entry ports.LedgerEntry) (entities.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[entry.UserID]
	if !ok {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	account.Balance += entry.Amount
	account.UpdatedAt = entry.CreatedAt
	s.accounts[entry.UserID] = account
	s.appendCompleted(entry)
	return account, nil
}

func (s *Store) DebitWithLog(_ context.Context, entry ports.LedgerEntry) (entities.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[entry.UserID]
	if !ok {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	if account.Balance < entry.Amount {
		return entities.Account{}, domainerrors.ErrInsufficientFunds
	}
	account.Balance -= entry.Amount
	account.UpdatedAt = entry.CreatedAt
	s.accounts[entry.UserID] = account
	s.appendCompleted(entry)
	return account, nil
}

func (s *Store) OpenPendingDeposit(_ context.Context, transaction entities.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(transaction.TransactionID) == "" {
		return domainerrors.ErrInvalidInput
	}
	s.transactions[transaction.TransactionID] = transaction
	return nil
}

func (s *Store) GetTransaction(_ context.Context, transactionID string) (entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transaction, ok := s.transactions[strings.TrimSpace(transactionID)]
	if !ok {
		return entities.Transaction{}, domainerrors.ErrTransactionNotFound
	}
	return transaction, nil
}

func (s *Store) AttachExternalID(_ context.Context, transactionID string, externalID string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transaction, ok := s.transactions[transactionID]
	if !ok {
		return domainerrors.ErrTransactionNotFound
	}
	transaction.ExternalID = &externalID
	transaction.UpdatedAt = updatedAt
	s.transactions[transactionID] = transaction
	return nil
}

func (s *Store) CompletePendingDeposit(
	_ context.Context,
	transactionID string,
	completedAt time.Time,
) (entities.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transaction, ok := s.transactions[transactionID]
	if !ok {
		return entities.Account{}, false, domainerrors.ErrTransactionNotFound
	}
	if transaction.Status != entities.TransactionStatusPending {
		return entities.Account{}, false, nil
	}

	account, ok := s.accounts[transaction.UserID]
	if !ok {
		return entities.Account{}, false, domainerrors.ErrAccountNotFound
	}

	transaction.Status = entities.TransactionStatusCompleted
	transaction.UpdatedAt = completedAt
	s.transactions[transactionID] = transaction

	account.Balance += transaction.Amount
	account.UpdatedAt = completedAt
	s.accounts[transaction.UserID] = account
	return account, true, nil
}

func (s *Store) FailIfPending(_ context.Context, transactionID string, failedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transaction, ok := s.transactions[transactionID]
	if !ok {
		return false, domainerrors.ErrTransactionNotFound
	}
	if transaction.Status != entities.TransactionStatusPending {
		return false, nil
	}
	transaction.Status = entities.TransactionStatusFailed
	transaction.UpdatedAt = failedAt
	s.transactions[transactionID] = transaction
	return true, nil
}

func (s *Store) ListTransactionsByUser(
	_ context.Context,
	userID string,
	limit int,
	offset int,
) (ports.TransactionPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []entities.Transaction
	for _, transaction := range s.transactions {
		if transaction.UserID == userID {
			items = append(items, transaction)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	total := int64(len(items))
	if offset >= len(items) {
		return ports.TransactionPage{Total: total}, nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return ports.TransactionPage{Items: items, Total: total}, nil
}

func (s *Store) FindStalePending(
	_ context.Context,
	olderThan time.Time,
	newerThan time.Time,
	limit int,
) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, transaction := range s.transactions {
		if transaction.Status != entities.TransactionStatusPending {
			continue
		}
		if transaction.ExternalID == nil || strings.TrimSpace(*transaction.ExternalID) == "" {
			continue
		}
		if !transaction.CreatedAt.Before(olderThan) || !transaction.CreatedAt.After(newerThan) {
			continue
		}
		ids = append(ids, id)
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

func (s *Store) FailAbandoned(_ context.Context, cutoff time.Time, failedAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for id, transaction := range s.transactions {
		if transaction.Status != entities.TransactionStatusPending {
			continue
		}
		if transaction.ExternalID != nil && strings.TrimSpace(*transaction.ExternalID) != "" {
			continue
		}
		if !transaction.CreatedAt.Before(cutoff) {
			continue
		}
		transaction.Status = entities.TransactionStatusFailed
		transaction.UpdatedAt = failedAt
		s.transactions[id] = transaction
		count++
	}
	return count, nil
}

// appendCompleted records the log row paired with a balance mutation.
// Callers hold the store mutex.
func (s *Store) appendCompleted(entry ports.LedgerEntry) {
	transaction := entities.Transaction{
		TransactionID: entry.TransactionID,
		UserID:        entry.UserID,
		Amount:        entry.Amount,
		Type:          entry.Type,
		Status:        entities.TransactionStatusCompleted,
		CreatedAt:     entry.CreatedAt,
		UpdatedAt:     entry.CreatedAt,
	}
	if entry.VideoID != "" {
		videoID := entry.VideoID
		transaction.VideoID = &videoID
	}
	s.transactions[entry.TransactionID] = transaction
}
