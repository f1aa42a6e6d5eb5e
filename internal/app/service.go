/**
 * @description
 * This file contains the application service for the subscription tracker.
 * The Service orchestrates the repository, the pure billing math, the event
 * producer, and the identity provider client. Every operation that needs the
 * current date receives it from the caller, captured once per request.
 */
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m-ch1ang/subscription-tracker/internal/domain"
)

// ErrRateLimited is returned when an owner exceeds the password-change budget.
var ErrRateLimited = errors.New("too many attempts, try again later")

// Repository defines the store operations the service needs. All reads and
// writes are scoped to the owning user.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Subscription, error)
	GetByOwner(ctx context.Context, id, ownerID string) (*domain.Subscription, error)
	Create(ctx context.Context, ownerID string, input domain.SubscriptionInput) (*domain.Subscription, error)
	Update(ctx context.Context, id, ownerID string, input domain.SubscriptionInput) (*domain.Subscription, error)
	Delete(ctx context.Context, id, ownerID string) (int64, error)
}

// EventPublisher publishes subscription lifecycle events. A nil publisher
// disables eventing.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// IdentityClient is the identity-provider admin surface the service uses for
// account actions it does not own itself.
type IdentityClient interface {
	UpdateUserPassword(ctx context.Context, userID, newPassword string) error
}

// RateLimiter caps repeated attempts per subject within a window. A nil
// limiter disables limiting.
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// Service provides the business logic for subscription management.
type Service struct {
	repo     Repository
	producer EventPublisher
	identity IdentityClient
	limiter  RateLimiter
	logger   *slog.Logger

	eventExchange         string
	passwordChangesPerMin int
}

// ServiceOptions bundles the optional collaborators for NewService.
type ServiceOptions struct {
	Producer              EventPublisher
	Identity              IdentityClient
	Limiter               RateLimiter
	EventExchange         string
	PasswordChangesPerMin int
}

// NewService creates a new subscription service.
func NewService(repo Repository, logger *slog.Logger, opts ServiceOptions) *Service {
	if opts.PasswordChangesPerMin <= 0 {
		opts.PasswordChangesPerMin = 5
	}
	return &Service{
		repo:                  repo,
		producer:              opts.Producer,
		identity:              opts.Identity,
		limiter:               opts.Limiter,
		logger:                logger,
		eventExchange:         opts.EventExchange,
		passwordChangesPerMin: opts.PasswordChangesPerMin,
	}
}

// List returns the owner's subscriptions, newest first, each enriched with its
// next payment date relative to today.
func (s *Service) List(ctx context.Context, ownerID string, today domain.Date) ([]domain.EnrichedSubscription, error) {
	subs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	enriched := make([]domain.EnrichedSubscription, 0, len(subs))
	for _, sub := range subs {
		enriched = append(enriched, WithNextPaymentDate(sub, today))
	}
	return enriched, nil
}

// Get returns a single enriched subscription owned by ownerID.
func (s *Service) Get(ctx context.Context, id, ownerID string, today domain.Date) (*domain.EnrichedSubscription, error) {
	sub, err := s.repo.GetByOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	enriched := WithNextPaymentDate(*sub, today)
	return &enriched, nil
}

// Create stores a new subscription for the owner and returns it enriched with
// the next payment date computed from the request's own start date and
// frequency.
func (s *Service) Create(ctx context.Context, ownerID string, input domain.SubscriptionInput, today domain.Date) (*domain.EnrichedSubscription, error) {
	sub, err := s.repo.Create(ctx, ownerID, input)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, domain.EventSubscriptionCreated, sub.ID, ownerID)

	enriched := WithNextPaymentDate(*sub, today)
	return &enriched, nil
}

// Update replaces the mutable fields of an owner's subscription and returns
// the enriched result.
func (s *Service) Update(ctx context.Context, id, ownerID string, input domain.SubscriptionInput, today domain.Date) (*domain.EnrichedSubscription, error) {
	sub, err := s.repo.Update(ctx, id, ownerID, input)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, domain.EventSubscriptionUpdated, sub.ID, ownerID)

	enriched := WithNextPaymentDate(*sub, today)
	return &enriched, nil
}

// Delete removes an owner's subscription. The repository reports how many rows
// were deleted; zero surfaces as the store's not-found error.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.publishEvent(ctx, domain.EventSubscriptionDeleted, id, ownerID)
	return nil
}

// Stats computes the dashboard aggregate over all of the owner's
// subscriptions.
func (s *Service) Stats(ctx context.Context, ownerID string) (*domain.DashboardStats, error) {
	subs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := ComputeStats(subs)
	return &stats, nil
}

// ChangePassword delegates a password update to the identity provider, after
// consuming the per-owner attempt budget when a limiter is configured.
func (s *Service) ChangePassword(ctx context.Context, ownerID, newPassword string) error {
	if s.identity == nil {
		return errors.New("identity provider not configured")
	}

	if s.limiter != nil {
		count, _, err := s.limiter.ConsumeRateLimit(ctx, "password_change", ownerID, s.passwordChangesPerMin, time.Minute)
		if err != nil {
			// Limiter outages must not lock users out of account recovery.
			s.logger.Warn("password change rate limiter unavailable", "error", err)
		} else if count > s.passwordChangesPerMin {
			return ErrRateLimited
		}
	}

	return s.identity.UpdateUserPassword(ctx, ownerID, newPassword)
}

// publishEvent sends a lifecycle event when a producer is configured. Publish
// failures are logged, never surfaced to the request.
func (s *Service) publishEvent(ctx context.Context, eventType, subscriptionID, ownerID string) {
	if s.producer == nil {
		return
	}

	event := domain.SubscriptionEvent{
		Type:           eventType,
		SubscriptionID: subscriptionID,
		OwnerID:        ownerID,
		OccurredAt:     time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.eventExchange, eventType, event); err != nil {
		s.logger.Warn("failed to publish subscription event", "type", eventType, "subscription_id", subscriptionID, "error", err)
	}
}
