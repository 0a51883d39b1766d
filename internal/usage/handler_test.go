package usage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandler(t *testing.T, userID uuid.UUID) *Handler {
	t.Helper()
	tracker, _ := setupTracker(t)
	plan := func(ctx context.Context, _ uuid.UUID) PlanTier { return PlanPremium }
	identity := func(r *http.Request) (uuid.UUID, bool) {
		if userID == uuid.Nil {
			return uuid.Nil, false
		}
		return userID, true
	}
	return NewHandler(tracker, plan, identity)
}

func TestGetCurrent_UsesInjectedIdentityAndPlan(t *testing.T) {
	userID := uuid.New()
	h := setupHandler(t, userID)

	h.tracker.Record(context.Background(), userID, TokenUsage{TotalTokens: 250}, Metadata{Feature: "summary"})

	rec := httptest.NewRecorder()
	h.GetCurrent(rec, httptest.NewRequest(http.MethodGet, "/api/v1/usage", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data UsageLimit `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(250), body.Data.DailyUsed)
	assert.Equal(t, LimitsFor(PlanPremium).DailyTokens, body.Data.DailyLimit)
	assert.Equal(t, LimitsFor(PlanPremium).MonthlyTokens, body.Data.MonthlyLimit)
}

func TestGetCurrent_UnauthenticatedRequest(t *testing.T) {
	h := setupHandler(t, uuid.Nil)

	rec := httptest.NewRecorder()
	h.GetCurrent(rec, httptest.NewRequest(http.MethodGet, "/api/v1/usage", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetStats_RejectsUnknownRange(t *testing.T) {
	h := setupHandler(t, uuid.New())

	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/usage/stats?range=year", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "range must be day, week, or month")
}
