/**
 * @description
 * This file contains the HTTP handler functions for the subscription tracker.
 * Handlers parse and validate incoming requests, capture the current date once
 * per request, call the service layer, and write JSON responses.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/m-ch1ang/subscription-tracker/internal/app"
	"github.com/m-ch1ang/subscription-tracker/internal/domain"
	"github.com/m-ch1ang/subscription-tracker/internal/store"
)

// Handler holds the application service that handlers interact with.
type Handler struct {
	service *app.Service

	// now supplies the current instant; override in tests for a fixed date.
	now func() time.Time
}

// NewHandler creates a new Handler with the given service.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

// today captures the reference date once per request so a computation can
// never straddle a midnight boundary.
func (h *Handler) today() domain.Date {
	return domain.DateOf(h.now())
}

// handleListSubscriptions returns the owner's subscriptions, enriched with
// their next payment dates.
func (h *Handler) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	subs, err := h.service.List(r.Context(), ownerID, h.today())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch subscriptions")
		return
	}

	respondWithJSON(w, http.StatusOK, subs)
}

// handleGetSubscription returns a single enriched subscription or 404.
func (h *Handler) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		respondWithError(w, http.StatusNotFound, "Subscription not found")
		return
	}

	sub, err := h.service.Get(r.Context(), id, ownerID, h.today())
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			respondWithError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch subscription")
		return
	}

	respondWithJSON(w, http.StatusOK, sub)
}

// handleCreateSubscription validates the payload and stores a new
// subscription for the owner.
func (h *Handler) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	input, errMsg := decodeSubscriptionInput(r)
	if errMsg != "" {
		respondWithError(w, http.StatusBadRequest, errMsg)
		return
	}

	sub, err := h.service.Create(r.Context(), ownerID, input, h.today())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create subscription")
		return
	}

	respondWithJSON(w, http.StatusCreated, sub)
}

// handleUpdateSubscription replaces the mutable fields of an owner's
// subscription.
func (h *Handler) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		respondWithError(w, http.StatusNotFound, "Subscription not found")
		return
	}

	input, errMsg := decodeSubscriptionInput(r)
	if errMsg != "" {
		respondWithError(w, http.StatusBadRequest, errMsg)
		return
	}

	sub, err := h.service.Update(r.Context(), id, ownerID, input, h.today())
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			respondWithError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to update subscription")
		return
	}

	respondWithJSON(w, http.StatusOK, sub)
}

// handleDeleteSubscription removes an owner's subscription.
func (h *Handler) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		respondWithError(w, http.StatusNotFound, "Subscription not found")
		return
	}

	if err := h.service.Delete(r.Context(), id, ownerID); err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			respondWithError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete subscription")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Subscription deleted successfully"})
}

// handleGetStats returns the dashboard aggregate for the owner.
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	stats, err := h.service.Stats(r.Context(), ownerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to calculate statistics")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// handleChangePassword delegates a password update to the identity provider.
func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.NewPassword) < 8 {
		respondWithError(w, http.StatusBadRequest, "Password must be at least 8 characters long")
		return
	}

	if err := h.service.ChangePassword(r.Context(), ownerID, req.NewPassword); err != nil {
		if errors.Is(err, app.ErrRateLimited) {
			respondWithError(w, http.StatusTooManyRequests, "Too many password change attempts")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// decodeSubscriptionInput parses and validates a create/update payload.
// The returned message is empty when the input is valid.
func decodeSubscriptionInput(r *http.Request) (domain.SubscriptionInput, string) {
	var raw struct {
		Name      string   `json:"name"`
		Amount    *float64 `json:"amount"`
		Frequency string   `json:"frequency"`
		StartDate string   `json:"startDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return domain.SubscriptionInput{}, "Invalid request body"
	}

	if raw.Name == "" || raw.Amount == nil || raw.Frequency == "" || raw.StartDate == "" {
		return domain.SubscriptionInput{}, "All fields are required"
	}

	frequency, ok := domain.ParseFrequency(raw.Frequency)
	if !ok {
		return domain.SubscriptionInput{}, "Invalid frequency value"
	}

	if *raw.Amount <= 0 {
		return domain.SubscriptionInput{}, "Amount must be greater than 0"
	}

	startDate, err := domain.ParseDate(raw.StartDate)
	if err != nil {
		return domain.SubscriptionInput{}, "Invalid start date"
	}

	return domain.SubscriptionInput{
		Name:      raw.Name,
		Amount:    *raw.Amount,
		Frequency: frequency,
		StartDate: startDate,
	}, ""
}

// respondWithJSON writes a JSON response with the given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError writes a JSON error body in the {"error": ...} shape.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
