package events

// Realtime notification types pushed to connected clients. The engine modules
// only produce these through their Notifier port; delivery transport lives in
// the platform layer.
const (
	TypeBalanceUpdated       = "BALANCE_UPDATED"
	TypeVideoProgressUpdated = "VIDEO_PROGRESS_UPDATED"
	TypeAuthorPayoutReceived = "AUTHOR_PAYOUT_RECEIVED"
	TypeVideoPublished       = "VIDEO_PUBLISHED"
	TypeTransactionSuccess   = "TRANSACTION_SUCCESS"
	TypeTransactionFailed    = "TRANSACTION_FAILED"
	TypeSeriesCreated        = "SERIES_CREATED"
)

// Notification is the wire shape written to each SSE stream.
// UserID is empty for broadcast notifications.
type Notification struct {
	Type   string `json:"type"`
	UserID string `json:"-"`
	Data   any    `json:"data"`
}
