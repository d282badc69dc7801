package uow

import (
	"context"

	"loan-manager-backend/internal/domain/loan"
)

type Repos struct {
	Loans loan.Repository
}

// UnitOfWork scopes repository work to one database transaction, so a loan
// mutation and the external calls made alongside it either all commit or all
// roll back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row first, then passes it to fn.
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}
