package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reelfund/contexts/finance-core/wallet-service/domain/entities"
	domainerrors "reelfund/contexts/finance-core/wallet-service/domain/errors"
	"reelfund/contexts/finance-core/wallet-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetAccount(ctx context.Context, userID string) (entities.Account, error) {
	var row accountModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Account{}, domainerrors.ErrAccountNotFound
		}
		return entities.Account{}, r.logError("wallet_repo_get_account_failed", err, "user_id", userID)
	}
	return row.toEntity(), nil
}

func (r *Repository) CreditWithLog(ctx context.Context, entry ports.LedgerEntry) (entities.Account, error) {
	var account entities.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&accountModel{}).
			Where("user_id = ?", entry.UserID).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance + ?", entry.Amount),
				"updated_at": entry.CreatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrAccountNotFound
		}
		if err := tx.Create(completedRow(entry)).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrInvalidInput
			}
			return err
		}
		return loadAccount(tx, entry.UserID, &account)
	})
	if err != nil {
		if isDomainError(err) {
			return entities.Account{}, err
		}
		return entities.Account{}, r.logError("wallet_repo_credit_failed", err,
			"user_id", entry.UserID,
			"transaction_id", entry.TransactionID,
		)
	}
	return account, nil
}

func (r *Repository) DebitWithLog(ctx context.Context, entry ports.LedgerEntry) (entities.Account, error) {
	var account entities.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Balance check and decrement are one conditional UPDATE, not a read
		// followed by a write, so concurrent debits cannot overdraw the row.
		result := tx.Model(&accountModel{}).
			Where("user_id = ? AND balance >= ?", entry.UserID, entry.Amount).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance - ?", entry.Amount),
				"updated_at": entry.CreatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var row accountModel
			if err := tx.Where("user_id = ?", entry.UserID).First(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domainerrors.ErrAccountNotFound
				}
				return err
			}
			return domainerrors.ErrInsufficientFunds
		}
		if err := tx.Create(completedRow(entry)).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrInvalidInput
			}
			return err
		}
		return loadAccount(tx, entry.UserID, &account)
	})
	if err != nil {
		if isDomainError(err) {
			return entities.Account{}, err
		}
		return entities.Account{}, r.logError("wallet_repo_debit_failed", err,
			"user_id", entry.UserID,
			"transaction_id", entry.TransactionID,
		)
	}
	return account, nil
}

func (r *Repository) OpenPendingDeposit(ctx context.Context, transaction entities.Transaction) error {
	row := transactionModelFromEntity(transaction)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidInput
		}
		return r.logError("wallet_repo_open_deposit_failed", err,
			"user_id", transaction.UserID,
			"transaction_id", transaction.TransactionID,
		)
	}
	return nil
}

func (r *Repository) GetTransaction(ctx context.Context, transactionID string) (entities.Transaction, error) {
	var row transactionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(transactionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Transaction{}, domainerrors.ErrTransactionNotFound
		}
		return entities.Transaction{}, r.logError("wallet_repo_get_transaction_failed", err,
			"transaction_id", transactionID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) AttachExternalID(
	ctx context.Context,
	transactionID string,
	externalID string,
	updatedAt time.Time,
) error {
	result := r.db.WithContext(ctx).
		Model(&transactionModel{}).
		Where("id = ?", transactionID).
		Updates(map[string]any{
			"external_id": externalID,
			"updated_at":  updatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("wallet_repo_attach_external_id_failed", result.Error,
			"transaction_id", transactionID,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTransactionNotFound
	}
	return nil
}

func (r *Repository) CompletePendingDeposit(
	ctx context.Context,
	transactionID string,
	completedAt time.Time,
) (entities.Account, bool, error) {
	var (
		account   entities.Account
		finalized bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row transactionModel
		if err := tx.Where("id = ?", transactionID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrTransactionNotFound
			}
			return err
		}

		// Conditional transition keyed on the current status. Zero rows
		// affected means another caller already finalized or failed it; the
		// credit below must then be skipped entirely.
		result := tx.Model(&transactionModel{}).
			Where("id = ? AND status = ?", transactionID, string(entities.TransactionStatusPending)).
			Updates(map[string]any{
				"status":     string(entities.TransactionStatusCompleted),
				"updated_at": completedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		finalized = true

		credit := tx.Model(&accountModel{}).
			Where("user_id = ?", row.UserID).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance + ?", row.Amount),
				"updated_at": completedAt.UTC(),
			})
		if credit.Error != nil {
			return credit.Error
		}
		if credit.RowsAffected == 0 {
			return domainerrors.ErrAccountNotFound
		}
		return loadAccount(tx, row.UserID, &account)
	})
	if err != nil {
		if isDomainError(err) {
			return entities.Account{}, false, err
		}
		return entities.Account{}, false, r.logError("wallet_repo_complete_deposit_failed", err,
			"transaction_id", transactionID,
		)
	}
	return account, finalized, nil
}

func (r *Repository) FailIfPending(ctx context.Context, transactionID string, failedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&transactionModel{}).
		Where("id = ? AND status = ?", transactionID, string(entities.TransactionStatusPending)).
		Updates(map[string]any{
			"status":     string(entities.TransactionStatusFailed),
			"updated_at": failedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("wallet_repo_fail_if_pending_failed", result.Error,
			"transaction_id", transactionID,
		)
	}
	return result.RowsAffected == 1, nil
}

func (r *Repository) ListTransactionsByUser(
	ctx context.Context,
	userID string,
	limit int,
	offset int,
) (ports.TransactionPage, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&transactionModel{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return ports.TransactionPage{}, r.logError("wallet_repo_count_transactions_failed", err, "user_id", userID)
	}

	var rows []transactionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return ports.TransactionPage{}, r.logError("wallet_repo_list_transactions_failed", err, "user_id", userID)
	}

	items := make([]entities.Transaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return ports.TransactionPage{Items: items, Total: total}, nil
}

func (r *Repository) FindStalePending(
	ctx context.Context,
	olderThan time.Time,
	newerThan time.Time,
	limit int,
) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&transactionModel{}).
		Where("status = ?", string(entities.TransactionStatusPending)).
		Where("external_id IS NOT NULL").
		Where("created_at < ? AND created_at > ?", olderThan.UTC(), newerThan.UTC()).
		Limit(limit).
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, r.logError("wallet_repo_find_stale_pending_failed", err)
	}
	return ids, nil
}

func (r *Repository) FailAbandoned(ctx context.Context, cutoff time.Time, failedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&transactionModel{}).
		Where("status = ? AND external_id IS NULL AND created_at < ?",
			string(entities.TransactionStatusPending), cutoff.UTC()).
		Updates(map[string]any{
			"status":     string(entities.TransactionStatusFailed),
			"updated_at": failedAt.UTC(),
		})
	if result.Error != nil {
		return 0, r.logError("wallet_repo_fail_abandoned_failed", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "finance-core/wallet-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("wallet repository operation failed", fields...)
	return err
}

func loadAccount(tx *gorm.DB, userID string, out *entities.Account) error {
	var row accountModel
	if err := tx.Where("user_id = ?", userID).First(&row).Error; err != nil {
		return err
	}
	*out = row.toEntity()
	return nil
}

func completedRow(entry ports.LedgerEntry) *transactionModel {
	row := &transactionModel{
		ID:        entry.TransactionID,
		UserID:    entry.UserID,
		Amount:    entry.Amount,
		Type:      string(entry.Type),
		Status:    string(entities.TransactionStatusCompleted),
		CreatedAt: entry.CreatedAt.UTC(),
		UpdatedAt: entry.CreatedAt.UTC(),
	}
	if strings.TrimSpace(entry.VideoID) != "" {
		videoID := strings.TrimSpace(entry.VideoID)
		row.VideoID = &videoID
	}
	return row
}

func isDomainError(err error) bool {
	return errors.Is(err, domainerrors.ErrAccountNotFound) ||
		errors.Is(err, domainerrors.ErrTransactionNotFound) ||
		errors.Is(err, domainerrors.ErrInsufficientFunds) ||
		errors.Is(err, domainerrors.ErrInvalidInput)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type accountModel struct {
	UserID     string    `gorm:"column:user_id;primaryKey"`
	Balance    int64     `gorm:"column:balance"`
	Reputation int64     `gorm:"column:reputation"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (accountModel) TableName() string {
	return "accounts"
}

func (m accountModel) toEntity() entities.Account {
	return entities.Account{
		UserID:     m.UserID,
		Balance:    m.Balance,
		Reputation: m.Reputation,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

type transactionModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	UserID     string    `gorm:"column:user_id"`
	Amount     int64     `gorm:"column:amount"`
	Type       string    `gorm:"column:type"`
	Status     string    `gorm:"column:status"`
	ExternalID *string   `gorm:"column:external_id"`
	VideoID    *string   `gorm:"column:video_id"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (transactionModel) TableName() string {
	return "transactions"
}

func transactionModelFromEntity(transaction entities.Transaction) transactionModel {
	return transactionModel{
		ID:         transaction.TransactionID,
		UserID:     transaction.UserID,
		Amount:     transaction.Amount,
		Type:       string(transaction.Type),
		Status:     string(transaction.Status),
		ExternalID: transaction.ExternalID,
		VideoID:    transaction.VideoID,
		CreatedAt:  transaction.CreatedAt.UTC(),
		UpdatedAt:  transaction.UpdatedAt.UTC(),
	}
}

func (m transactionModel) toEntity() entities.Transaction {
	return entities.Transaction{
		TransactionID: m.ID,
		UserID:        m.UserID,
		Amount:        m.Amount,
		Type:          entities.TransactionType(m.Type),
		Status:        entities.TransactionStatus(m.Status),
		ExternalID:    m.ExternalID,
		VideoID:       m.VideoID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
