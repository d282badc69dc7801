package loan

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusRepaid    Status = "repaid"
	StatusDefaulted Status = "defaulted"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool { return s == StatusRepaid || s == StatusDefaulted }

var (
	ErrNotFound        = errors.New("loan not found")
	ErrInvalidState    = errors.New("loan status forbids this operation")
	ErrUnauthorized    = errors.New("caller is not authorized for this operation")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Loan is one collateralized installment loan. Amount columns are int64 minor
// units; the autoincrement primary key doubles as the public loan id (strictly
// increasing, never 0, never reused). Rows are never deleted: repaid and
// defaulted loans stay queryable.
type Loan struct {
	ID                 uint64    `gorm:"primaryKey;column:id" json:"loan_id"`
	BorrowerID         string    `gorm:"size:32;index:idx_loans_borrower;column:borrower_id" json:"borrower_id"`
	CollateralID       uint64    `gorm:"column:collateral_id" json:"collateral_id"`
	Principal          int64     `gorm:"column:principal_minor" json:"principal_minor"`
	OutstandingBalance int64     `gorm:"column:outstanding_minor" json:"outstanding_minor"`
	TotalRepaid        int64     `gorm:"column:total_repaid_minor" json:"total_repaid_minor"`
	AnnualRateBps      int64     `gorm:"column:annual_rate_bps" json:"annual_rate_bps"`
	DurationMonths     int64     `gorm:"column:duration_months" json:"duration_months"`
	MonthlyPayment     int64     `gorm:"column:monthly_payment_minor" json:"monthly_payment_minor"`
	StartAt            time.Time `gorm:"column:start_at" json:"start_at"`
	NextPaymentDue     time.Time `gorm:"column:next_payment_due" json:"next_payment_due"`
	Status             Status    `gorm:"type:enum('pending','active','repaid','defaulted');default:'pending';column:status" json:"status"`
	PaymentsMade       uint32    `gorm:"column:payments_made" json:"payments_made"`
	PaymentsMissed     uint32    `gorm:"column:payments_missed" json:"payments_missed"`
	StatusUpdatedAt    time.Time `gorm:"column:status_updated_at" json:"status_updated_at"`
	CreatedAt          time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }
