// Package amortization holds the pure installment arithmetic. All amounts are
// int64 minor units (e.g. cents), all rates are annual basis points. Every
// division truncates toward zero and no rounding is carried between calls.
package amortization

import "math/big"

const bpsDenominator = 10000

// MonthlyPayment returns the fixed installment for a simple-interest loan:
//
//	totalInterest = principal * annualRateBps * months / (12 * 10000)
//	payment       = (principal + totalInterest) / months
//
// The last installment may leave a residual smaller than the payment; the
// caller is expected to clamp the balance at zero rather than let it go
// negative.
func MonthlyPayment(principal, annualRateBps, months int64) int64 {
	if months <= 0 {
		return 0
	}
	total := principal + TotalInterest(principal, annualRateBps, months)
	return total / months
}

// TotalInterest is the simple (non-compounding) interest over the whole term.
// The three-factor product can exceed int64 for large principals, so it is
// computed in big.Int; big.Quo truncates toward zero like native division.
func TotalInterest(principal, annualRateBps, months int64) int64 {
	n := new(big.Int).Mul(big.NewInt(principal), big.NewInt(annualRateBps))
	n.Mul(n, big.NewInt(months))
	n.Quo(n, big.NewInt(12*bpsDenominator))
	return n.Int64()
}

// InterestPortion is the interest share of one monthly payment against the
// outstanding balance. The annual rate is divided by 12 and truncated BEFORE
// the multiply; the basis points lost to that truncation are specified
// behavior, not an approximation to tighten.
func InterestPortion(outstanding, annualRateBps int64) int64 {
	monthlyRateBps := annualRateBps / 12
	n := new(big.Int).Mul(big.NewInt(outstanding), big.NewInt(monthlyRateBps))
	n.Quo(n, big.NewInt(bpsDenominator))
	return n.Int64()
}

// PrincipalPortion returns how much of a payment reduces principal after the
// interest portion is taken out. A payment smaller than the interest portion
// credits zero principal; the shortfall stays as under-paid interest.
func PrincipalPortion(amount, interestPortion int64) int64 {
	if amount > interestPortion {
		return amount - interestPortion
	}
	return 0
}
