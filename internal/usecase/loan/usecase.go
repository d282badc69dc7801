package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"loan-manager-backend/internal/domain/gateway"
	domain "loan-manager-backend/internal/domain/loan"
	"loan-manager-backend/internal/domain/uow"
	"loan-manager-backend/internal/ratepolicy"
	"loan-manager-backend/pkg/amortization"
	"loan-manager-backend/pkg/id"
)

// One scheduling period. Payments advance the due date by exactly this much.
const paymentPeriod = 30 * 24 * time.Hour

// Identities holds the set-once collaborator identities the engine needs at
// call time: who may report remittances, and which account repayments settle
// into.
type Identities struct {
	OracleID    string
	PoolAccount string
}

// Usecase is the loan lifecycle engine: pending → active → {repaid, defaulted}.
// Every mutation runs inside one UnitOfWork transaction together with the
// external calls it requires, so a failed collaborator call rolls the loan
// record back untouched.
type Usecase struct {
	uow        uow.UnitOfWork
	rates      ratepolicy.Policy
	collateral gateway.CollateralRegistry
	pool       gateway.CapitalPool
	token      gateway.TokenTransfer
	events     gateway.EventPublisher
	ids        Identities
	log        *slog.Logger
	now        func() time.Time
}

func NewUsecase(
	tx uow.UnitOfWork,
	rates ratepolicy.Policy,
	collateral gateway.CollateralRegistry,
	pool gateway.CapitalPool,
	token gateway.TokenTransfer,
	events gateway.EventPublisher,
	ids Identities,
	log *slog.Logger,
) *Usecase {
	return &Usecase{
		uow:        tx,
		rates:      rates,
		collateral: collateral,
		pool:       pool,
		token:      token,
		events:     events,
		ids:        ids,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Request creates a pending loan for the borrower. The rate comes from the
// rate policy, the fixed installment from the amortization calculator. The
// caller adapter has already authenticated the borrower identity.
func (u *Usecase) Request(ctx context.Context, in RequestLoanInput) (*LoanDTO, error) {
	if in.BorrowerID == "" {
		return nil, fmt.Errorf("%w: borrower id required", domain.ErrInvalidArgument)
	}
	if in.AmountMinor <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidArgument)
	}
	if in.DurationMonths <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", domain.ErrInvalidArgument)
	}

	rate, err := u.rates.RateFor(ctx, in.CollateralID)
	if err != nil {
		return nil, fmt.Errorf("rate lookup: %w", err)
	}

	now := u.now()
	l := &domain.Loan{
		BorrowerID:         in.BorrowerID,
		CollateralID:       in.CollateralID,
		Principal:          in.AmountMinor,
		OutstandingBalance: in.AmountMinor,
		AnnualRateBps:      rate,
		DurationMonths:     in.DurationMonths,
		MonthlyPayment:     amortization.MonthlyPayment(in.AmountMinor, rate, in.DurationMonths),
		StartAt:            now,
		NextPaymentDue:     now.Add(paymentPeriod),
		Status:             domain.StatusPending,
		StatusUpdatedAt:    now,
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Loans.Create(ctx, l)
	})
	if err != nil {
		return nil, err
	}

	u.emit(ctx, gateway.EventLoanRequested, l.ID, l.Principal)
	return toDTO(l), nil
}

// Approve stakes the collateral, draws the principal from the capital pool and
// activates the loan. Only pending loans can be approved; a second call fails
// with ErrInvalidState and changes nothing.
func (u *Usecase) Approve(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Status != domain.StatusPending {
			return fmt.Errorf("%w: approve requires pending, got %s", domain.ErrInvalidState, l.Status)
		}
		if err := u.collateral.Stake(ctx, l.CollateralID, l.ID); err != nil {
			return fmt.Errorf("stake collateral: %w", err)
		}
		if err := u.pool.Borrow(ctx, l.Principal, l.BorrowerID, l.ID); err != nil {
			return fmt.Errorf("pool borrow: %w", err)
		}
		l.Status = domain.StatusActive
		l.StatusUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	u.emit(ctx, gateway.EventLoanApproved, dto.LoanID, dto.PrincipalMinor)
	return dto, nil
}

// Pay applies a manual payment to an active loan.
func (u *Usecase) Pay(ctx context.Context, loanID uint64, amount int64) (*PaymentDTO, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidArgument)
	}

	var dto *PaymentDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		applied, err := u.applyPayment(ctx, r, l, amount)
		if err != nil {
			return err
		}
		dto = applied
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	u.emit(ctx, gateway.EventPaymentMade, dto.Loan.LoanID, dto.AmountMinor)
	return dto, nil
}

// ProcessAutomaticPayment handles an oracle-reported remittance: at most one
// monthly installment is applied to the loan and the rest is returned as the
// residual owed to the recipient. Oracle-only.
func (u *Usecase) ProcessAutomaticPayment(ctx context.Context, callerID string, loanID uint64, remittanceAmount int64) (*RemittanceDTO, error) {
	if callerID != u.ids.OracleID {
		return nil, fmt.Errorf("%w: oracle identity required", domain.ErrUnauthorized)
	}
	if remittanceAmount <= 0 {
		return nil, fmt.Errorf("%w: remittance must be positive", domain.ErrInvalidArgument)
	}

	var dto *RemittanceDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		paymentAmount := remittanceAmount
		if paymentAmount > l.MonthlyPayment {
			paymentAmount = l.MonthlyPayment
		}
		applied, err := u.applyPayment(ctx, r, l, paymentAmount)
		if err != nil {
			return err
		}
		dto = &RemittanceDTO{
			Loan:          applied.Loan,
			AppliedMinor:  paymentAmount,
			ResidualMinor: remittanceAmount - paymentAmount,
		}
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	u.emit(ctx, gateway.EventPaymentMade, dto.Loan.LoanID, dto.AppliedMinor)
	return dto, nil
}

// MarkMissed records an oracle-reported missed payment. The second miss
// defaults the loan; liquidation is a follow-on external action.
func (u *Usecase) MarkMissed(ctx context.Context, callerID string, loanID uint64) (*LoanDTO, error) {
	if callerID != u.ids.OracleID {
		return nil, fmt.Errorf("%w: oracle identity required", domain.ErrUnauthorized)
	}

	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Status != domain.StatusActive {
			return fmt.Errorf("%w: mark missed requires active, got %s", domain.ErrInvalidState, l.Status)
		}
		l.PaymentsMissed++
		if l.PaymentsMissed >= 2 {
			l.Status = domain.StatusDefaulted
			l.StatusUpdatedAt = u.now()
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	u.emit(ctx, gateway.EventPaymentMissed, dto.LoanID, int64(dto.PaymentsMissed))
	return dto, nil
}

// Get returns the loan record read-only.
func (u *Usecase) Get(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByID(ctx, loanID)
		if err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return dto, nil
}

// ListByBorrower returns the borrower's loans in creation order.
func (u *Usecase) ListByBorrower(ctx context.Context, borrowerID string) ([]LoanDTO, error) {
	var out []LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		loans, err := r.Loans.ListByBorrowerID(ctx, borrowerID)
		if err != nil {
			return err
		}
		out = make([]LoanDTO, 0, len(loans))
		for i := range loans {
			out = append(out, *toDTO(&loans[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// applyPayment is the shared payment core for Pay and the oracle path. The
// interest portion is computed against the balance BEFORE this payment is
// applied: a late lump payment does not retroactively shrink the interest
// accrued for the period just ended.
func (u *Usecase) applyPayment(ctx context.Context, r uow.Repos, l *domain.Loan, amount int64) (*PaymentDTO, error) {
	if l.Status != domain.StatusActive {
		return nil, fmt.Errorf("%w: pay requires active, got %s", domain.ErrInvalidState, l.Status)
	}

	if err := u.token.Transfer(ctx, l.BorrowerID, u.ids.PoolAccount, amount); err != nil {
		return nil, fmt.Errorf("settlement transfer: %w", err)
	}

	interestPortion := amortization.InterestPortion(l.OutstandingBalance, l.AnnualRateBps)
	principalPortion := amortization.PrincipalPortion(amount, interestPortion)

	l.TotalRepaid += amount
	l.OutstandingBalance -= principalPortion
	if l.OutstandingBalance < 0 {
		l.OutstandingBalance = 0
	}
	l.PaymentsMade++
	l.NextPaymentDue = l.NextPaymentDue.Add(paymentPeriod)

	if l.OutstandingBalance <= 0 {
		l.Status = domain.StatusRepaid
		l.StatusUpdatedAt = u.now()
		if err := u.collateral.Unstake(ctx, l.CollateralID); err != nil {
			return nil, fmt.Errorf("unstake collateral: %w", err)
		}
	}

	if err := u.pool.Repay(ctx, principalPortion, interestPortion, l.ID); err != nil {
		return nil, fmt.Errorf("pool repay: %w", err)
	}

	if err := r.Loans.Save(ctx, l); err != nil {
		return nil, err
	}

	return &PaymentDTO{
		Loan:                  *toDTO(l),
		AmountMinor:           amount,
		PrincipalPortionMinor: principalPortion,
		InterestPortionMinor:  interestPortion,
	}, nil
}

// emit publishes a notification; delivery failures are logged and swallowed,
// emission is not part of the consistency contract.
func (u *Usecase) emit(ctx context.Context, typ string, loanID uint64, amount int64) {
	ev := gateway.Event{ID: id.NewID32(), Type: typ, LoanID: loanID, Amount: amount, At: u.now()}
	if err := u.events.Publish(ctx, ev); err != nil {
		u.log.Warn("event publish failed", "type", typ, "loan_id", loanID, "err", err)
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func toDTO(l *domain.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:              l.ID,
		BorrowerID:          l.BorrowerID,
		CollateralID:        l.CollateralID,
		PrincipalMinor:      l.Principal,
		OutstandingMinor:    l.OutstandingBalance,
		TotalRepaidMinor:    l.TotalRepaid,
		AnnualRateBps:       l.AnnualRateBps,
		DurationMonths:      l.DurationMonths,
		MonthlyPaymentMinor: l.MonthlyPayment,
		StartAt:             l.StartAt,
		NextPaymentDue:      l.NextPaymentDue,
		Status:              string(l.Status),
		PaymentsMade:        l.PaymentsMade,
		PaymentsMissed:      l.PaymentsMissed,
		CreatedAt:           l.CreatedAt,
	}
}
