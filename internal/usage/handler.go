package usage

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/resumeforge/resumeforge/internal/api"
)

// PlanResolver maps a user to their subscription tier. Implementations
// should fall back to FREE when the tier cannot be determined.
type PlanResolver func(ctx context.Context, userID uuid.UUID) PlanTier

// IdentityFunc resolves the authenticated user's ID from a request.
// Injected from the composition root; this package is imported by the
// users package and must not depend on auth.
type IdentityFunc func(r *http.Request) (uuid.UUID, bool)

// Handler provides HTTP handlers for the usage endpoints.
type Handler struct {
	tracker  *Tracker
	plan     PlanResolver
	identity IdentityFunc
}

// NewHandler creates a usage Handler.
func NewHandler(tracker *Tracker, plan PlanResolver, identity IdentityFunc) *Handler {
	return &Handler{tracker: tracker, plan: plan, identity: identity}
}

// GetCurrent returns the authenticated user's current usage against their
// plan limits.
func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(r)
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	tier := h.plan(r.Context(), userID)
	limits := LimitsFor(tier)

	cur := h.tracker.CurrentUsage(r.Context(), userID)
	cur.DailyLimit = limits.DailyTokens
	cur.MonthlyLimit = limits.MonthlyTokens

	api.JSON(w, http.StatusOK, cur)
}

// GetStats returns an aggregate usage report for the authenticated user.
// The ?range= query parameter selects day (default), week, or month.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(r)
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	rng := RangeDay
	switch TimeRange(r.URL.Query().Get("range")) {
	case RangeWeek:
		rng = RangeWeek
	case RangeMonth:
		rng = RangeMonth
	case RangeDay, "":
	default:
		api.HandleError(w, api.NewBadRequestError("range must be day, week, or month"))
		return
	}

	api.JSON(w, http.StatusOK, h.tracker.Stats(r.Context(), userID, rng))
}

// GetWarnings returns usage percentages and near-limit flags for the
// authenticated user.
func (h *Handler) GetWarnings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(r)
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	tier := h.plan(r.Context(), userID)
	api.JSON(w, http.StatusOK, h.tracker.Warnings(r.Context(), userID, tier))
}
