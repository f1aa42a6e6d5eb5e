package app

import (
	"testing"
	"time"

	"github.com/m-ch1ang/subscription-tracker/internal/domain"
)

func statsFixture() []domain.Subscription {
	start := domain.NewDate(2024, time.January, 1)
	return []domain.Subscription{
		{ID: "a", Amount: 10, Frequency: domain.FrequencyMonthly, StartDate: start},
		{ID: "b", Amount: 10, Frequency: domain.FrequencyMonthly, StartDate: start},
		{ID: "c", Amount: 120, Frequency: domain.FrequencyYearly, StartDate: start},
	}
}

func TestComputeStats_EmptyInput(t *testing.T) {
	got := ComputeStats(nil)
	want := domain.DashboardStats{}
	if got != want {
		t.Fatalf("expected zero stats for empty input, got %+v", got)
	}
}

func TestComputeStats_MixedFrequencies(t *testing.T) {
	got := ComputeStats(statsFixture())

	if got.TotalSubscriptions != 3 {
		t.Fatalf("expected 3 subscriptions, got %d", got.TotalSubscriptions)
	}
	if got.TotalYearlyCost != 360.00 {
		t.Fatalf("expected yearly cost 360.00, got %v", got.TotalYearlyCost)
	}
	if got.AverageMonthlyCost != 30.00 {
		t.Fatalf("expected average monthly cost 30.00, got %v", got.AverageMonthlyCost)
	}
}

func TestComputeStats_OrderIndependent(t *testing.T) {
	subs := statsFixture()
	want := ComputeStats(subs)

	permutations := [][]int{
		{0, 2, 1},
		{1, 0, 2},
		{2, 1, 0},
	}
	for _, order := range permutations {
		permuted := make([]domain.Subscription, 0, len(subs))
		for _, i := range order {
			permuted = append(permuted, subs[i])
		}
		if got := ComputeStats(permuted); got != want {
			t.Fatalf("order %v changed the result: %+v vs %+v", order, got, want)
		}
	}
}

func TestComputeStats_RoundsAtTheFinalSum(t *testing.T) {
	subs := []domain.Subscription{
		{Amount: 9.99, Frequency: domain.FrequencyMonthly},
	}
	got := ComputeStats(subs)

	if got.TotalYearlyCost != 119.88 {
		t.Fatalf("expected yearly cost 119.88, got %v", got.TotalYearlyCost)
	}
	// The average divides the unrounded sum and rounds independently.
	if got.AverageMonthlyCost != 9.99 {
		t.Fatalf("expected average monthly cost 9.99, got %v", got.AverageMonthlyCost)
	}
}

func TestComputeStats_UnknownFrequencyContributesNothing(t *testing.T) {
	subs := []domain.Subscription{
		{Amount: 50, Frequency: domain.Frequency("weekly")},
		{Amount: 120, Frequency: domain.FrequencyYearly},
	}
	got := ComputeStats(subs)

	if got.TotalSubscriptions != 2 {
		t.Fatalf("expected both rows counted, got %d", got.TotalSubscriptions)
	}
	if got.TotalYearlyCost != 120 {
		t.Fatalf("expected unknown frequency to contribute zero, got %v", got.TotalYearlyCost)
	}
}
