package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"reelfund/contexts/finance-core/wallet-service/application"
	"reelfund/contexts/finance-core/wallet-service/domain/entities"
	httptransport "reelfund/contexts/finance-core/wallet-service/transport/http"
)

type Handler struct {
	Wallet application.Service
	Logger *slog.Logger
}

func (h Handler) GetBalanceHandler(ctx context.Context, userID string) (httptransport.BalanceResponse, error) {
	account, err := h.Wallet.GetBalance(ctx, userID)
	if err != nil {
		return httptransport.BalanceResponse{}, err
	}
	return httptransport.BalanceResponse{
		Balance:    account.Balance,
		Reputation: account.Reputation,
	}, nil
}

func (h Handler) DepositHandler(
	ctx context.Context,
	userID string,
	req httptransport.DepositRequest,
) (httptransport.BalanceResponse, error) {
	account, err := h.Wallet.AddFunds(ctx, userID, req.Amount)
	if err != nil {
		return httptransport.BalanceResponse{}, err
	}
	return httptransport.BalanceResponse{
		Balance:    account.Balance,
		Reputation: account.Reputation,
	}, nil
}

func (h Handler) WithdrawHandler(
	ctx context.Context,
	userID string,
	req httptransport.WithdrawRequest,
) (httptransport.BalanceResponse, error) {
	account, err := h.Wallet.DeductFunds(ctx, userID, req.Amount, entities.TransactionTypeWithdraw)
	if err != nil {
		return httptransport.BalanceResponse{}, err
	}
	return httptransport.BalanceResponse{
		Balance:    account.Balance,
		Reputation: account.Reputation,
	}, nil
}

func (h Handler) CreateDepositOrderHandler(
	ctx context.Context,
	userID string,
	req httptransport.DepositOrderRequest,
) (httptransport.DepositOrderResponse, error) {
	order, err := h.Wallet.CreateDepositOrder(ctx, userID, req.Amount)
	if err != nil {
		return httptransport.DepositOrderResponse{}, err
	}
	return httptransport.DepositOrderResponse{
		TransactionID: order.TransactionID,
		PaymentData:   order.Payload,
	}, nil
}

func (h Handler) AttachExternalIDHandler(
	ctx context.Context,
	transactionID string,
	req httptransport.AttachExternalIDRequest,
) error {
	return h.Wallet.AttachExternalID(ctx, transactionID, req.ExternalID)
}

func (h Handler) FinalizeDepositHandler(
	ctx context.Context,
	transactionID string,
) (httptransport.FinalizeDepositResponse, error) {
	account, finalized, err := h.Wallet.FinalizeDeposit(ctx, transactionID)
	if err != nil {
		return httptransport.FinalizeDepositResponse{}, err
	}
	resp := httptransport.FinalizeDepositResponse{Finalized: finalized}
	if finalized {
		resp.Balance = account.Balance
		resp.Reputation = account.Reputation
	}
	return resp, nil
}

func (h Handler) SyncStatusHandler(
	ctx context.Context,
	transactionID string,
) (httptransport.SyncStatusResponse, error) {
	status, err := h.Wallet.SyncStatus(ctx, transactionID)
	if err != nil {
		return httptransport.SyncStatusResponse{}, err
	}
	return httptransport.SyncStatusResponse{
		TransactionID: transactionID,
		Status:        string(status),
	}, nil
}

func (h Handler) ListTransactionsHandler(
	ctx context.Context,
	userID string,
	page int,
	limit int,
) (httptransport.TransactionListResponse, error) {
	result, err := h.Wallet.ListTransactions(ctx, userID, page, limit)
	if err != nil {
		return httptransport.TransactionListResponse{}, err
	}
	items := make([]httptransport.TransactionItem, 0, len(result.Items))
	for _, transaction := range result.Items {
		item := httptransport.TransactionItem{
			TransactionID: transaction.TransactionID,
			Amount:        transaction.Amount,
			Type:          string(transaction.Type),
			Status:        string(transaction.Status),
			CreatedAt:     transaction.CreatedAt.UTC().Format(time.RFC3339),
		}
		if transaction.VideoID != nil {
			item.VideoID = *transaction.VideoID
		}
		items = append(items, item)
	}
	return httptransport.TransactionListResponse{
		Items: items,
		Total: result.Total,
	}, nil
}
