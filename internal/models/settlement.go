package models

import "github.com/shopspring/decimal"

// SettlementStatus is the lifecycle state of a Settlement.
type SettlementStatus string

const (
	// SettlementPending is the initial state: the debtor claims to have paid.
	SettlementPending SettlementStatus = "pending"
	// SettlementConfirmed is terminal: the creditor acknowledged receipt.
	SettlementConfirmed SettlementStatus = "confirmed"
)

// Settlement represents a claimed payment between group members made
// outside the system. It never changes expense or split rows.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromUserID is the user who paid (debtor settling up). Only they may create it.
	FromUserID string

	// ToUserID is the user who received payment. Only they may confirm it.
	ToUserID string

	// Amount is informational and not checked against balances.
	Amount decimal.Decimal

	Status SettlementStatus

	// Note is an optional description for the settlement.
	Note string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// ConfirmedAt is the Unix timestamp of confirmation, 0 while pending.
	ConfirmedAt int64
}
