package loan

import "time"

type RequestLoanInput struct {
	BorrowerID     string `json:"borrower_id"`
	CollateralID   uint64 `json:"collateral_id"`
	AmountMinor    int64  `json:"amount_minor"`
	DurationMonths int64  `json:"duration_months"`
}

type LoanDTO struct {
	LoanID              uint64    `json:"loan_id"`
	BorrowerID          string    `json:"borrower_id"`
	CollateralID        uint64    `json:"collateral_id"`
	PrincipalMinor      int64     `json:"principal_minor"`
	OutstandingMinor    int64     `json:"outstanding_minor"`
	TotalRepaidMinor    int64     `json:"total_repaid_minor"`
	AnnualRateBps       int64     `json:"annual_rate_bps"`
	DurationMonths      int64     `json:"duration_months"`
	MonthlyPaymentMinor int64     `json:"monthly_payment_minor"`
	StartAt             time.Time `json:"start_at"`
	NextPaymentDue      time.Time `json:"next_payment_due"`
	Status              string    `json:"status"`
	PaymentsMade        uint32    `json:"payments_made"`
	PaymentsMissed      uint32    `json:"payments_missed"`
	CreatedAt           time.Time `json:"created_at"`
}

// PaymentDTO reports how one payment was attributed.
type PaymentDTO struct {
	Loan                  LoanDTO `json:"loan"`
	AmountMinor           int64   `json:"amount_minor"`
	PrincipalPortionMinor int64   `json:"principal_portion_minor"`
	InterestPortionMinor  int64   `json:"interest_portion_minor"`
}

// RemittanceDTO is the oracle-path result: what was applied to the loan and
// what flows on to the recipient.
type RemittanceDTO struct {
	Loan          LoanDTO `json:"loan"`
	AppliedMinor  int64   `json:"applied_minor"`
	ResidualMinor int64   `json:"residual_minor"`
}
