// Package gateway declares the ports to the external collaborators the
// lifecycle engine depends on. All calls are synchronous; an error from any of
// them aborts the loan transaction they run inside.
package gateway

import (
	"context"
	"time"
)

// CollateralRegistry verifies and escrows the pledged asset.
type CollateralRegistry interface {
	Stake(ctx context.Context, collateralID, loanID uint64) error
	Unstake(ctx context.Context, collateralID uint64) error
	// QualityScore feeds the rate policy; 0..100.
	QualityScore(ctx context.Context, collateralID uint64) (uint32, error)
}

// CapitalPool supplies principal on approval and receives the split of every
// repayment.
type CapitalPool interface {
	Borrow(ctx context.Context, amount int64, borrowerID string, loanID uint64) error
	Repay(ctx context.Context, principalPortion, interestPortion int64, loanID uint64) error
}

// TokenTransfer moves settlement currency between accounts.
type TokenTransfer interface {
	Transfer(ctx context.Context, from, to string, amount int64) error
}

// Event notification types.
const (
	EventLoanRequested = "loan_requested"
	EventLoanApproved  = "loan_approved"
	EventPaymentMade   = "payment_made"
	EventPaymentMissed = "payment_missed"
)

type Event struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	LoanID uint64 `json:"loan_id"`
	// Amount is the payment amount for payment events, the requested principal
	// for loan_requested, and the missed counter for payment_missed.
	Amount int64     `json:"amount"`
	At     time.Time `json:"at"`
}

// EventPublisher emits fire-and-forget notifications for external indexers.
// Publishing is outside the consistency contract: implementations log and
// swallow delivery failures.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}
