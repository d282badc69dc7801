package uowmock

import (
	"context"
	"sync"

	"loan-manager-backend/internal/domain/loan"
	"loan-manager-backend/internal/domain/uow"
	"loan-manager-backend/internal/testutil/loanmock"
)

var _ uow.UnitOfWork = (*UoW)(nil)

// UoW is an in-memory UnitOfWork for engine tests: loans live in a map, every
// "transaction" snapshots the store and restores it when fn returns an error,
// mimicking a rollback.
type UoW struct {
	mu    sync.Mutex
	loans map[uint64]loan.Loan
	next  uint64
}

func New() *UoW { return &UoW{loans: map[uint64]loan.Loan{}} }

// Seed inserts a loan directly, assigning the next id if unset, and returns it.
func (m *UoW) Seed(l loan.Loan) loan.Loan {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == 0 {
		m.next++
		l.ID = m.next
	} else if l.ID > m.next {
		m.next = l.ID
	}
	m.loans[l.ID] = l
	return l
}

// Get returns a copy of the stored loan for assertions.
func (m *UoW) Get(id uint64) (loan.Loan, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loans[id]
	return l, ok
}

func (m *UoW) repos() uow.Repos {
	return uow.Repos{Loans: &loanmock.Repo{
		CreateFn: func(_ context.Context, l *loan.Loan) error {
			m.next++
			l.ID = m.next
			m.loans[l.ID] = *l
			return nil
		},
		GetByIDFn:          m.get,
		GetByIDForUpdateFn: m.get,
		ListByBorrowerIDFn: func(_ context.Context, borrowerID string) ([]loan.Loan, error) {
			var out []loan.Loan
			for i := uint64(1); i <= m.next; i++ {
				if l, ok := m.loans[i]; ok && l.BorrowerID == borrowerID {
					out = append(out, l)
				}
			}
			return out, nil
		},
		SaveFn: func(_ context.Context, l *loan.Loan) error {
			m.loans[l.ID] = *l
			return nil
		},
	}}
}

func (m *UoW) get(_ context.Context, id uint64) (*loan.Loan, error) {
	l, ok := m.loans[id]
	if !ok {
		return nil, loan.ErrNotFound
	}
	cp := l
	return &cp, nil
}

func (m *UoW) snapshot() map[uint64]loan.Loan {
	cp := make(map[uint64]loan.Loan, len(m.loans))
	for k, v := range m.loans {
		cp[k] = v
	}
	return cp
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before, beforeNext := m.snapshot(), m.next
	if err := fn(m.repos()); err != nil {
		m.loans, m.next = before, beforeNext
		return err
	}
	return nil
}

func (m *UoW) WithinLoanTx(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before, beforeNext := m.snapshot(), m.next
	l, err := m.get(ctx, loanID)
	if err != nil {
		return err
	}
	if err := fn(m.repos(), l); err != nil {
		m.loans, m.next = before, beforeNext
		return err
	}
	return nil
}
