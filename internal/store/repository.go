/**
 * @description
 * This file implements the data access layer for the subscription tracker.
 * It contains all the SQL for the subscriptions table. Every query is scoped
 * by owner_id, so one user can never read or mutate another user's rows.
 */
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/m-ch1ang/subscription-tracker/internal/domain"
)

// ErrSubscriptionNotFound is returned when an id does not exist for the owner.
var ErrSubscriptionNotFound = errors.New("subscription not found")

const subscriptionColumns = "id, owner_id, name, amount, frequency, start_date, created_at, updated_at"

// Repository handles database operations for subscriptions.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the subscriptions table if it does not exist yet.
// Called once on startup, mirroring the table definition used in production
// migrations.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
        CREATE TABLE IF NOT EXISTS subscriptions (
            id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            owner_id    TEXT NOT NULL,
            name        TEXT NOT NULL CHECK (name <> ''),
            amount      DOUBLE PRECISION NOT NULL CHECK (amount > 0),
            frequency   TEXT NOT NULL CHECK (frequency IN ('monthly', 'yearly', 'custom')),
            start_date  DATE NOT NULL,
            created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE INDEX IF NOT EXISTS idx_subscriptions_owner_id ON subscriptions (owner_id);
    `
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure subscriptions schema: %w", err)
	}
	return nil
}

// ListByOwner returns all subscriptions belonging to ownerID, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Subscription, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM subscriptions
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `, subscriptionColumns)

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []domain.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// GetByOwner returns the subscription with the given id if ownerID owns it.
func (r *Repository) GetByOwner(ctx context.Context, id, ownerID string) (*domain.Subscription, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM subscriptions
        WHERE id = $1 AND owner_id = $2
    `, subscriptionColumns)

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// Create inserts a new subscription for ownerID and returns the stored row.
func (r *Repository) Create(ctx context.Context, ownerID string, input domain.SubscriptionInput) (*domain.Subscription, error) {
	query := fmt.Sprintf(`
        INSERT INTO subscriptions (owner_id, name, amount, frequency, start_date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING %s
    `, subscriptionColumns)

	sub, err := scanSubscription(r.db.QueryRow(ctx, query,
		ownerID,
		input.Name,
		input.Amount,
		string(input.Frequency),
		input.StartDate,
	))
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Update replaces the mutable fields of an owner's subscription and returns
// the updated row.
func (r *Repository) Update(ctx context.Context, id, ownerID string, input domain.SubscriptionInput) (*domain.Subscription, error) {
	query := fmt.Sprintf(`
        UPDATE subscriptions
        SET name = $3, amount = $4, frequency = $5, start_date = $6, updated_at = NOW()
        WHERE id = $1 AND owner_id = $2
        RETURNING %s
    `, subscriptionColumns)

	sub, err := scanSubscription(r.db.QueryRow(ctx, query,
		id,
		ownerID,
		input.Name,
		input.Amount,
		string(input.Frequency),
		input.StartDate,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// Delete removes an owner's subscription and returns the number of rows
// deleted. Zero rows surfaces as ErrSubscriptionNotFound.
func (r *Repository) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM subscriptions WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrSubscriptionNotFound
	}
	return tag.RowsAffected(), nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.OwnerID,
		&sub.Name,
		&sub.Amount,
		&sub.Frequency,
		&sub.StartDate,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
