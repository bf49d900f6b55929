// Package walletservice implements the platform ledger inside the
// finance-core context.
//
// The module owns coin balances, the append-mostly transaction log, deposit
// order preparation and the exactly-once deposit finalization path used by
// the payment webhook, the manual status check, and the background
// reconciliation sweeper. Business rules live in application/domain layers;
// storage, gateway, and transport concerns stay behind ports and adapters.
package walletservice
