//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumeforge/resumeforge/internal/usage"
)

func userIDFor(t *testing.T, env *TestEnv, token string) uuid.UUID {
	t.Helper()
	resp := DoRequest(t, env, "GET", "/api/v1/users/me", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := ParseResponse(t, resp)
	data := result["data"].(map[string]any)
	id, err := uuid.Parse(data["id"].(string))
	require.NoError(t, err)
	return id
}

func TestAIGenerationTracksUsage(t *testing.T) {
	env := SetupTestEnv(t)

	RegisterUser(t, env, "ai-user@example.com", "password123")
	token := LoginUser(t, env, "ai-user@example.com", "password123")
	resumeID := CreateResume(t, env, token, "AI Test Resume")

	resp := DoRequest(t, env, "POST", "/api/v1/resumes/"+resumeID+"/ai/summary", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Limit-Daily"))
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Remaining-Daily"))

	result := ParseResponse(t, resp)
	data := result["data"].(map[string]any)
	assert.Equal(t, "Generated output.", data["output"])
	assert.Equal(t, "summary", data["feature"])
	assert.NotEmpty(t, data["request_id"])

	// The stub reports 100 prompt + 40 completion tokens.
	usageResp := DoRequest(t, env, "GET", "/api/v1/usage", nil, token)
	require.Equal(t, http.StatusOK, usageResp.StatusCode)
	usageResult := ParseResponse(t, usageResp)
	usageData := usageResult["data"].(map[string]any)
	assert.Equal(t, float64(140), usageData["daily_used"])

	statsResp := DoRequest(t, env, "GET", "/api/v1/usage/stats?range=day", nil, token)
	require.Equal(t, http.StatusOK, statsResp.StatusCode)
	statsResult := ParseResponse(t, statsResp)
	statsData := statsResult["data"].(map[string]any)
	assert.Equal(t, float64(140), statsData["total_tokens"])
}

func TestQuotaDenialReturns429(t *testing.T) {
	env := SetupTestEnv(t)

	RegisterUser(t, env, "quota-user@example.com", "password123")
	token := LoginUser(t, env, "quota-user@example.com", "password123")
	resumeID := CreateResume(t, env, token, "Quota Test Resume")
	userID := userIDFor(t, env, token)

	// Exhaust the free daily allowance directly in the tracker.
	env.Tracker.Record(context.Background(), userID,
		usage.NewTokenUsage("gpt-4o-mini", 10_000, 0),
		usage.Metadata{Feature: "rewrite"})

	resp := DoRequest(t, env, "POST", "/api/v1/resumes/"+resumeID+"/ai/rewrite", nil, token)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining-Daily"))

	result := ParseResponse(t, resp)
	assert.Contains(t, result["error"], "Daily token limit exceeded")
}

func TestUsageWarnings(t *testing.T) {
	env := SetupTestEnv(t)

	RegisterUser(t, env, "warn-user@example.com", "password123")
	token := LoginUser(t, env, "warn-user@example.com", "password123")
	userID := userIDFor(t, env, token)

	// 80% of the free daily limit.
	env.Tracker.Record(context.Background(), userID,
		usage.NewTokenUsage("gpt-4o-mini", 8_000, 0),
		usage.Metadata{Feature: "summary"})

	resp := DoRequest(t, env, "GET", "/api/v1/usage/warnings", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := ParseResponse(t, resp)
	data := result["data"].(map[string]any)
	assert.Equal(t, true, data["daily_warning"])
	assert.Equal(t, false, data["monthly_warning"])
}

func TestPlanUpgradeRaisesLimits(t *testing.T) {
	env := SetupTestEnv(t)

	RegisterUser(t, env, "upgrade-user@example.com", "password123")
	token := LoginUser(t, env, "upgrade-user@example.com", "password123")

	body := map[string]string{"plan": "PREMIUM"}
	resp := DoRequest(t, env, "PUT", "/api/v1/users/me/plan", body, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	usageResp := DoRequest(t, env, "GET", "/api/v1/usage", nil, token)
	require.Equal(t, http.StatusOK, usageResp.StatusCode)
	result := ParseResponse(t, usageResp)
	data := result["data"].(map[string]any)
	assert.Equal(t, float64(100_000), data["daily_limit"])
}
