package http

import "reelfund/contexts/finance-core/wallet-service/ports"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BalanceResponse struct {
	Balance    int64 `json:"balance"`
	Reputation int64 `json:"reputation"`
}

type DepositRequest struct {
	Amount int64 `json:"amount"`
}

type WithdrawRequest struct {
	Amount int64 `json:"amount"`
}

type DepositOrderRequest struct {
	Amount int64 `json:"amount"`
}

type DepositOrderResponse struct {
	TransactionID string                    `json:"transaction_id"`
	PaymentData   ports.GatewayOrderPayload `json:"payment_data"`
}

type AttachExternalIDRequest struct {
	ExternalID string `json:"external_id"`
}

type FinalizeDepositResponse struct {
	Finalized  bool  `json:"finalized"`
	Balance    int64 `json:"balance,omitempty"`
	Reputation int64 `json:"reputation,omitempty"`
}

type SyncStatusResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

type TransactionItem struct {
	TransactionID string `json:"id"`
	Amount        int64  `json:"amount"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	VideoID       string `json:"video_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type TransactionListResponse struct {
	Items []TransactionItem `json:"items"`
	Total int64             `json:"total"`
}
