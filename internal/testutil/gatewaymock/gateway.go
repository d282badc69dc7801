package gatewaymock

import (
	"context"
	"sync"

	"loan-manager-backend/internal/domain/gateway"
)

var (
	_ gateway.CollateralRegistry = (*Collateral)(nil)
	_ gateway.CapitalPool        = (*Pool)(nil)
	_ gateway.TokenTransfer      = (*Token)(nil)
	_ gateway.EventPublisher     = (*Events)(nil)
)

// Collateral is a function-backed CollateralRegistry; nil fields succeed.
type Collateral struct {
	StakeFn        func(ctx context.Context, collateralID, loanID uint64) error
	UnstakeFn      func(ctx context.Context, collateralID uint64) error
	QualityScoreFn func(ctx context.Context, collateralID uint64) (uint32, error)

	StakeCalls   int
	UnstakeCalls int
}

func (m *Collateral) Stake(ctx context.Context, collateralID, loanID uint64) error {
	m.StakeCalls++
	if m.StakeFn != nil {
		return m.StakeFn(ctx, collateralID, loanID)
	}
	return nil
}

func (m *Collateral) Unstake(ctx context.Context, collateralID uint64) error {
	m.UnstakeCalls++
	if m.UnstakeFn != nil {
		return m.UnstakeFn(ctx, collateralID)
	}
	return nil
}

func (m *Collateral) QualityScore(ctx context.Context, collateralID uint64) (uint32, error) {
	if m.QualityScoreFn != nil {
		return m.QualityScoreFn(ctx, collateralID)
	}
	return 85, nil
}

// Pool records Borrow/Repay calls.
type Pool struct {
	BorrowFn func(ctx context.Context, amount int64, borrowerID string, loanID uint64) error
	RepayFn  func(ctx context.Context, principalPortion, interestPortion int64, loanID uint64) error

	BorrowCalls   int
	RepayCalls    int
	LastPrincipal int64
	LastInterest  int64
}

func (m *Pool) Borrow(ctx context.Context, amount int64, borrowerID string, loanID uint64) error {
	m.BorrowCalls++
	if m.BorrowFn != nil {
		return m.BorrowFn(ctx, amount, borrowerID, loanID)
	}
	return nil
}

func (m *Pool) Repay(ctx context.Context, principalPortion, interestPortion int64, loanID uint64) error {
	m.RepayCalls++
	m.LastPrincipal, m.LastInterest = principalPortion, interestPortion
	if m.RepayFn != nil {
		return m.RepayFn(ctx, principalPortion, interestPortion, loanID)
	}
	return nil
}

// Token records transfers.
type Token struct {
	TransferFn func(ctx context.Context, from, to string, amount int64) error

	TransferCalls int
	LastFrom      string
	LastTo        string
	LastAmount    int64
}

func (m *Token) Transfer(ctx context.Context, from, to string, amount int64) error {
	m.TransferCalls++
	m.LastFrom, m.LastTo, m.LastAmount = from, to, amount
	if m.TransferFn != nil {
		return m.TransferFn(ctx, from, to, amount)
	}
	return nil
}

// Events captures published notifications.
type Events struct {
	mu     sync.Mutex
	Events []gateway.Event
}

func (m *Events) Publish(_ context.Context, ev gateway.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
	return nil
}

func (m *Events) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Events))
	for _, ev := range m.Events {
		out = append(out, ev.Type)
	}
	return out
}
