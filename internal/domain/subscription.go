/**
 * @description
 * This file defines the core domain models for the subscription tracker.
 * It includes the Subscription entity that maps to the database table, the
 * Frequency enumeration, and the DTOs exchanged with API clients.
 */
package domain

import (
	"strings"
	"time"
)

// Frequency is the billing cadence of a subscription.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
	FrequencyCustom  Frequency = "custom"
)

// ParseFrequency normalizes a raw frequency value. The boolean reports whether
// the value is one of the enumerated cadences.
func ParseFrequency(raw string) (Frequency, bool) {
	f := Frequency(strings.ToLower(strings.TrimSpace(raw)))
	return f, f.Valid()
}

// Valid reports whether the frequency is one of the enumerated cadences.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// Subscription represents a recurring charge owned by an authenticated user.
// ID and OwnerID are assigned at creation and immutable afterwards.
type Subscription struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Frequency Frequency `json:"frequency"`
	StartDate Date      `json:"startDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SubscriptionInput carries the mutable fields of a subscription for create
// and update requests. Validation happens at the API boundary before the
// input reaches the service layer.
type SubscriptionInput struct {
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Frequency Frequency `json:"frequency"`
	StartDate Date      `json:"startDate"`
}

// EnrichedSubscription is a Subscription augmented with its computed next
// payment date. The date is derived on demand and never persisted.
type EnrichedSubscription struct {
	Subscription
	NextPaymentDate Date `json:"nextPaymentDate"`
}

// DashboardStats is the aggregate view computed fresh from the full set of an
// owner's subscriptions on every request.
type DashboardStats struct {
	TotalSubscriptions int     `json:"totalSubscriptions"`
	TotalYearlyCost    float64 `json:"totalYearlyCost"`
	AverageMonthlyCost float64 `json:"averageMonthlyCost"`
}
