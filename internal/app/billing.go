/**
 * @description
 * This file contains the pure billing-cycle math the rest of the service is
 * built on: projecting a subscription's next payment date and normalizing a
 * periodic amount to a yearly figure. Everything here is deterministic; the
 * reference date is always an explicit parameter, never read from the clock.
 */
package app

import (
	"time"

	"github.com/m-ch1ang/subscription-tracker/internal/domain"
)

// NextOccurrence returns the earliest occurrence of a billing cycle that falls
// on or after today. Both start and today must be date-only values (midnight
// UTC, as produced by domain.Date).
//
// If the start date has not been reached yet it is returned unchanged.
// Otherwise a cursor advances from the start date one period at a time, one
// calendar month for monthly/custom and one calendar year for yearly, until it
// reaches today. Calendar advancement follows time.Time.AddDate, which
// normalizes month-end overflow (Jan 31 plus one month lands in early March);
// that single rule applies to every step so month-end dates are never skipped
// or duplicated.
//
// A frequency outside the enumeration stops the cursor where it stands rather
// than looping forever.
func NextOccurrence(start time.Time, freq domain.Frequency, today time.Time) time.Time {
	cursor := start
	for cursor.Before(today) {
		switch freq {
		case domain.FrequencyMonthly, domain.FrequencyCustom:
			cursor = cursor.AddDate(0, 1, 0)
		case domain.FrequencyYearly:
			cursor = cursor.AddDate(1, 0, 0)
		default:
			return cursor
		}
	}
	return cursor
}

// AnnualizedCost converts a per-cycle amount into its yearly equivalent.
// Custom cadences currently bill like monthly ones; the branch is kept
// explicit so the aliasing stays a single visible decision. Unrecognized
// frequencies normalize to zero instead of failing.
func AnnualizedCost(amount float64, freq domain.Frequency) float64 {
	switch freq {
	case domain.FrequencyMonthly:
		return amount * 12
	case domain.FrequencyYearly:
		return amount
	case domain.FrequencyCustom:
		// Custom intervals are not modeled yet; they bill monthly.
		return amount * 12
	default:
		return 0
	}
}

// WithNextPaymentDate returns the subscription augmented with its next payment
// date relative to today. Idempotent for a fixed today.
func WithNextPaymentDate(sub domain.Subscription, today domain.Date) domain.EnrichedSubscription {
	next := NextOccurrence(sub.StartDate.Time(), sub.Frequency, today.Time())
	return domain.EnrichedSubscription{
		Subscription:    sub,
		NextPaymentDate: domain.DateOf(next),
	}
}
