package users

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/resumeforge/resumeforge/internal/api"
	"github.com/resumeforge/resumeforge/internal/usage"
)

// IdentityFunc resolves the authenticated user's ID from a request.
// Injected from the composition root so this package stays free of the
// auth package, which depends on users for registration.
type IdentityFunc func(r *http.Request) (uuid.UUID, bool)

type Handler struct {
	svc      *Service
	identity IdentityFunc
	validate *validator.Validate
}

func NewHandler(svc *Service, identity IdentityFunc) *Handler {
	return &Handler{
		svc:      svc,
		identity: identity,
		validate: validator.New(),
	}
}

type UpdatePlanRequest struct {
	Plan string `json:"plan" validate:"required,oneof=FREE PREMIUM PRO"`
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(r)
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	user, err := h.svc.GetByID(r.Context(), userID)
	if err != nil {
		slog.Error("getting user", "user_id", userID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if user == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	api.JSON(w, http.StatusOK, user)
}

func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(r)
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req UpdatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	if err := h.svc.UpdatePlan(r.Context(), userID, usage.PlanTier(req.Plan)); err != nil {
		slog.Error("updating plan", "user_id", userID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "plan updated")
}
