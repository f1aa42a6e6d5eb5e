/**
 * @description
 * This file defines the lifecycle events published when a subscription is
 * created, updated, or deleted. Downstream consumers (notifications, analytics)
 * subscribe to these via the topic exchange.
 */
package domain

import "time"

// Subscription event types, used as AMQP routing keys.
const (
	EventSubscriptionCreated = "subscription.created"
	EventSubscriptionUpdated = "subscription.updated"
	EventSubscriptionDeleted = "subscription.deleted"
)

// SubscriptionEvent is the payload published for every subscription mutation.
type SubscriptionEvent struct {
	Type           string    `json:"type"`
	SubscriptionID string    `json:"subscriptionId"`
	OwnerID        string    `json:"ownerId"`
	OccurredAt     time.Time `json:"occurredAt"`
}
