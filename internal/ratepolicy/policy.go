// Package ratepolicy maps collateral quality to an annual interest rate in
// basis points. The curve is pluggable: the lifecycle engine only sees the
// Policy interface.
package ratepolicy

import (
	"context"

	"loan-manager-backend/internal/domain/gateway"
)

type Policy interface {
	// RateFor is total over collateral ids: every valid id yields a rate. An
	// error only signals a failed score lookup, never a gap in the curve.
	RateFor(ctx context.Context, collateralID uint64) (int64, error)
}

// Fixed returns the same rate for every collateral.
type Fixed struct {
	Bps int64
}

func (f Fixed) RateFor(context.Context, uint64) (int64, error) { return f.Bps, nil }

// Tiered looks up the collateral quality score and maps score bands to rates:
// 90-100 → 1500 bps, 80-89 → 2000, 70-79 → 3000, below → 4000.
type Tiered struct {
	Scores gateway.CollateralRegistry
}

func (t Tiered) RateFor(ctx context.Context, collateralID uint64) (int64, error) {
	score, err := t.Scores.QualityScore(ctx, collateralID)
	if err != nil {
		return 0, err
	}
	return rateForScore(score), nil
}

func rateForScore(score uint32) int64 {
	switch {
	case score >= 90:
		return 1500
	case score >= 80:
		return 2000
	case score >= 70:
		return 3000
	default:
		return 4000
	}
}
