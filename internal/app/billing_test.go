package app

import (
	"math"
	"testing"
	"time"

	"github.com/m-ch1ang/subscription-tracker/internal/domain"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		freq  domain.Frequency
		today time.Time
		want  time.Time
	}{
		{
			name:  "monthly advances past today",
			start: date(2024, time.January, 15),
			freq:  domain.FrequencyMonthly,
			today: date(2024, time.March, 1),
			want:  date(2024, time.March, 15),
		},
		{
			name:  "yearly anniversary on today counts as reached",
			start: date(2023, time.June, 1),
			freq:  domain.FrequencyYearly,
			today: date(2024, time.June, 1),
			want:  date(2024, time.June, 1),
		},
		{
			name:  "yearly two years back lands exactly on anniversary",
			start: date(2022, time.June, 1),
			freq:  domain.FrequencyYearly,
			today: date(2024, time.June, 1),
			want:  date(2024, time.June, 1),
		},
		{
			name:  "future start date returned unchanged",
			start: date(2024, time.December, 25),
			freq:  domain.FrequencyMonthly,
			today: date(2024, time.March, 1),
			want:  date(2024, time.December, 25),
		},
		{
			name:  "start equal to today returned unchanged",
			start: date(2024, time.March, 1),
			freq:  domain.FrequencyYearly,
			today: date(2024, time.March, 1),
			want:  date(2024, time.March, 1),
		},
		{
			name:  "custom behaves like monthly",
			start: date(2024, time.January, 15),
			freq:  domain.FrequencyCustom,
			today: date(2024, time.March, 1),
			want:  date(2024, time.March, 15),
		},
		{
			// AddDate normalizes Jan 31 + 1 month into early March in a
			// non-leap year; subsequent steps keep that normalized day.
			name:  "month-end overflow follows AddDate normalization",
			start: date(2023, time.January, 31),
			freq:  domain.FrequencyMonthly,
			today: date(2023, time.February, 15),
			want:  date(2023, time.March, 3),
		},
		{
			name:  "unknown frequency with past start stops at the cursor",
			start: date(2024, time.January, 15),
			freq:  domain.Frequency("weekly"),
			today: date(2024, time.March, 1),
			want:  date(2024, time.January, 15),
		},
		{
			name:  "unknown frequency with future start returns start",
			start: date(2024, time.December, 25),
			freq:  domain.Frequency("weekly"),
			today: date(2024, time.March, 1),
			want:  date(2024, time.December, 25),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(tt.start, tt.freq, tt.today)
			if !got.Equal(tt.want) {
				t.Fatalf("expected %s, got %s", tt.want.Format("2006-01-02"), got.Format("2006-01-02"))
			}
		})
	}
}

// For monthly and yearly cadences with a past start date, the result must be
// the first occurrence on or after today: on/after today, and strictly less
// than today once rolled back by a single period.
func TestNextOccurrence_FirstOnOrAfterToday(t *testing.T) {
	today := date(2024, time.March, 1)
	starts := []time.Time{
		date(2020, time.January, 1),
		date(2023, time.February, 28),
		date(2023, time.December, 31),
		date(2024, time.February, 15),
	}

	for _, freq := range []domain.Frequency{domain.FrequencyMonthly, domain.FrequencyYearly} {
		for _, start := range starts {
			got := NextOccurrence(start, freq, today)
			if got.Before(today) {
				t.Fatalf("%s from %s: result %s is before today", freq, start.Format("2006-01-02"), got.Format("2006-01-02"))
			}

			var previous time.Time
			if freq == domain.FrequencyMonthly {
				previous = got.AddDate(0, -1, 0)
			} else {
				previous = got.AddDate(-1, 0, 0)
			}
			if !previous.Before(today) {
				t.Fatalf("%s from %s: result %s is not the first occurrence on/after today", freq, start.Format("2006-01-02"), got.Format("2006-01-02"))
			}
		}
	}
}

func TestAnnualizedCost(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		freq   domain.Frequency
		want   float64
	}{
		{name: "monthly multiplies by twelve", amount: 9.99, freq: domain.FrequencyMonthly, want: 119.88},
		{name: "yearly unchanged", amount: 120, freq: domain.FrequencyYearly, want: 120},
		{name: "custom aliases monthly", amount: 10, freq: domain.FrequencyCustom, want: 120},
		{name: "unknown degrades to zero", amount: 50, freq: domain.Frequency("weekly"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnnualizedCost(tt.amount, tt.freq)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestWithNextPaymentDate(t *testing.T) {
	sub := domain.Subscription{
		ID:        "sub-1",
		OwnerID:   "owner-1",
		Name:      "Streaming",
		Amount:    9.99,
		Frequency: domain.FrequencyMonthly,
		StartDate: domain.NewDate(2024, time.January, 15),
	}
	today := domain.NewDate(2024, time.March, 1)

	enriched := WithNextPaymentDate(sub, today)
	if enriched.NextPaymentDate.String() != "2024-03-15" {
		t.Fatalf("expected next payment 2024-03-15, got %s", enriched.NextPaymentDate)
	}
	if enriched.ID != sub.ID || enriched.Amount != sub.Amount {
		t.Fatal("expected the original subscription fields to be preserved")
	}
}

func TestWithNextPaymentDate_Idempotent(t *testing.T) {
	sub := domain.Subscription{
		Frequency: domain.FrequencyMonthly,
		StartDate: domain.NewDate(2023, time.July, 4),
	}
	today := domain.NewDate(2024, time.March, 1)

	first := WithNextPaymentDate(sub, today)
	second := WithNextPaymentDate(first.Subscription, today)
	if first.NextPaymentDate != second.NextPaymentDate {
		t.Fatalf("expected identical dates, got %s then %s", first.NextPaymentDate, second.NextPaymentDate)
	}
}
