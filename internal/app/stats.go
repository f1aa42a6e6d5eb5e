package app

import (
	"math"

	"github.com/m-ch1ang/subscription-tracker/internal/domain"
)

// ComputeStats aggregates an owner's subscriptions into dashboard figures.
// Every row counts as active; there is no archived state in this model.
//
// The yearly total is rounded once at the final sum, not per item. The monthly
// average divides the unrounded sum and rounds independently, so the two
// figures never compound each other's rounding error. An empty input yields
// zero-value stats.
func ComputeStats(subs []domain.Subscription) domain.DashboardStats {
	var yearly float64
	for _, sub := range subs {
		yearly += AnnualizedCost(sub.Amount, sub.Frequency)
	}

	return domain.DashboardStats{
		TotalSubscriptions: len(subs),
		TotalYearlyCost:    round2(yearly),
		AverageMonthlyCost: round2(yearly / 12),
	}
}

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
