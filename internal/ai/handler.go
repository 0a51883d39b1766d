package ai

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/resumeforge/resumeforge/internal/api"
	"github.com/resumeforge/resumeforge/internal/auth"
	"github.com/resumeforge/resumeforge/internal/resumes"
	"github.com/resumeforge/resumeforge/internal/usage"
)

type Handler struct {
	svc     *Service
	tracker *usage.Tracker
	plan    usage.PlanResolver
}

func NewHandler(svc *Service, tracker *usage.Tracker, plan usage.PlanResolver) *Handler {
	return &Handler{
		svc:     svc,
		tracker: tracker,
		plan:    plan,
	}
}

type GenerateRequest struct {
	Instructions string `json:"instructions"`
}

// Generate runs an AI feature against a resume. The resume is set in context
// by the ownership middleware.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	resume := resumes.GetResumeFromContext(r.Context())
	if resume == nil {
		api.HandleError(w, api.ErrResumeNotFound)
		return
	}

	feature, ok := ParseFeature(chi.URLParam(r, "feature"))
	if !ok {
		api.HandleError(w, api.NewBadRequestError("unknown AI feature"))
		return
	}

	var req GenerateRequest
	if r.Body != nil {
		// Body is optional; ignore decode errors on empty bodies.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := h.svc.Generate(r.Context(), userID, resume, feature, req.Instructions)

	h.setRateLimitHeaders(w, r, userID)

	if err != nil {
		var quotaErr *QuotaError
		if errors.As(err, &quotaErr) {
			api.HandleError(w, api.NewQuotaExceededError(quotaErr.Decision.Reason))
			return
		}
		slog.Error("ai generation failed", "feature", feature, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, result)
}

func (h *Handler) setRateLimitHeaders(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	tier := h.plan(r.Context(), userID)
	for key, value := range h.tracker.RateLimitHeaders(r.Context(), userID, tier) {
		w.Header().Set(key, value)
	}
}
