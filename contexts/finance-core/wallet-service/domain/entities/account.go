package entities

import "time"

// Account holds a user's coin balance and critic reputation. Balance never
// goes negative; every mutation goes through the ledger repository together
// with a transaction log row.
type Account struct {
	UserID     string
	Balance    int64
	Reputation int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
