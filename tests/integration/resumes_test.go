//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeCRUD(t *testing.T) {
	env := SetupTestEnv(t)

	RegisterUser(t, env, "crud@example.com", "password123")
	token := LoginUser(t, env, "crud@example.com", "password123")

	resumeID := CreateResume(t, env, token, "Backend Engineer CV")

	t.Run("get returns created resume", func(t *testing.T) {
		resp := DoRequest(t, env, "GET", "/api/v1/resumes/"+resumeID, nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := ParseResponse(t, resp)
		data := result["data"].(map[string]any)
		assert.Equal(t, "Backend Engineer CV", data["title"])
		basics := data["basics"].(map[string]any)
		assert.Equal(t, "Test Candidate", basics["full_name"])
	})

	t.Run("update changes only provided fields", func(t *testing.T) {
		body := map[string]any{"title": "Senior Backend Engineer CV"}
		resp := DoRequest(t, env, "PUT", "/api/v1/resumes/"+resumeID, body, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := ParseResponse(t, resp)
		data := result["data"].(map[string]any)
		assert.Equal(t, "Senior Backend Engineer CV", data["title"])
		basics := data["basics"].(map[string]any)
		assert.Equal(t, "Test Candidate", basics["full_name"])
	})

	t.Run("list contains resume", func(t *testing.T) {
		resp := DoRequest(t, env, "GET", "/api/v1/resumes", nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := ParseResponse(t, resp)
		items := result["data"].([]any)
		assert.NotEmpty(t, items)
	})

	t.Run("delete then get returns 404", func(t *testing.T) {
		resp := DoRequest(t, env, "DELETE", "/api/v1/resumes/"+resumeID, nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = DoRequest(t, env, "GET", "/api/v1/resumes/"+resumeID, nil, token)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestResumeOwnershipIsolation(t *testing.T) {
	env := SetupTestEnv(t)

	RegisterUser(t, env, "owner-a@example.com", "password123")
	RegisterUser(t, env, "owner-b@example.com", "password123")

	tokenA := LoginUser(t, env, "owner-a@example.com", "password123")
	tokenB := LoginUser(t, env, "owner-b@example.com", "password123")

	resumeAID := CreateResume(t, env, tokenA, "User A Resume")

	t.Run("owner can access own resume", func(t *testing.T) {
		resp := DoRequest(t, env, "GET", "/api/v1/resumes/"+resumeAID, nil, tokenA)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("other user cannot GET resume", func(t *testing.T) {
		resp := DoRequest(t, env, "GET", "/api/v1/resumes/"+resumeAID, nil, tokenB)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("other user cannot UPDATE resume", func(t *testing.T) {
		body := map[string]any{"title": "Hijacked"}
		resp := DoRequest(t, env, "PUT", "/api/v1/resumes/"+resumeAID, body, tokenB)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("other user cannot DELETE resume", func(t *testing.T) {
		resp := DoRequest(t, env, "DELETE", "/api/v1/resumes/"+resumeAID, nil, tokenB)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("other user cannot run AI features on resume", func(t *testing.T) {
		resp := DoRequest(t, env, "POST", "/api/v1/resumes/"+resumeAID+"/ai/summary", nil, tokenB)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("listing only returns own resumes", func(t *testing.T) {
		CreateResume(t, env, tokenB, "User B Resume")

		resp := DoRequest(t, env, "GET", "/api/v1/resumes", nil, tokenA)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := ParseResponse(t, resp)
		for _, item := range result["data"].([]any) {
			resume := item.(map[string]any)
			assert.NotEqual(t, "User B Resume", resume["title"],
				"User A should not see User B's resumes")
		}
	})

	t.Run("unauthenticated access denied", func(t *testing.T) {
		resp := DoRequest(t, env, "GET", "/api/v1/resumes/"+resumeAID, nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token access denied", func(t *testing.T) {
		resp := DoRequest(t, env, "GET", "/api/v1/resumes/"+resumeAID, nil, "invalid-jwt-token")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
