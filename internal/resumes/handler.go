package resumes

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/resumeforge/resumeforge/internal/api"
	"github.com/resumeforge/resumeforge/internal/auth"
	"github.com/resumeforge/resumeforge/internal/nats"
)

type Handler struct {
	svc       *Service
	publisher *nats.Publisher
	validate  *validator.Validate
}

func NewHandler(svc *Service, publisher *nats.Publisher) *Handler {
	return &Handler{
		svc:       svc,
		publisher: publisher,
		validate:  validator.New(),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req CreateResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	resume, err := h.svc.Create(r.Context(), userID, &req)
	if err != nil {
		slog.Error("creating resume", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusCreated, resume)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
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

	params := DefaultListParams()
	if p := r.URL.Query().Get("page"); p != "" {
		if page, err := strconv.Atoi(p); err == nil && page > 0 {
			params.Page = page
		}
	}
	if ps := r.URL.Query().Get("page_size"); ps != "" {
		if pageSize, err := strconv.Atoi(ps); err == nil && pageSize > 0 && pageSize <= 100 {
			params.PageSize = pageSize
		}
	}

	resumes, totalCount, err := h.svc.ListByUser(r.Context(), userID, params)
	if err != nil {
		slog.Error("listing resumes", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, resumes, totalCount, params.Page, params.PageSize)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	resume := GetResumeFromContext(r.Context())
	if resume == nil {
		api.HandleError(w, api.ErrResumeNotFound)
		return
	}

	api.JSON(w, http.StatusOK, resume)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	resume := GetResumeFromContext(r.Context())
	if resume == nil {
		api.HandleError(w, api.ErrResumeNotFound)
		return
	}

	var req UpdateResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	updated, err := h.svc.Update(r.Context(), resume, &req)
	if err != nil {
		slog.Error("updating resume", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	resume := GetResumeFromContext(r.Context())
	if resume == nil {
		api.HandleError(w, api.ErrResumeNotFound)
		return
	}

	if err := h.svc.Delete(r.Context(), resume.ID); err != nil {
		slog.Error("deleting resume", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "resume deleted successfully")
}

// OwnershipMiddleware verifies resume ownership before allowing access.
func (h *Handler) OwnershipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			api.HandleError(w, api.ErrUnauthorized)
			return
		}

		resumeIDStr := chi.URLParam(r, "resumeID")
		resumeID, err := uuid.Parse(resumeIDStr)
		if err != nil {
			api.HandleError(w, api.NewBadRequestError("invalid resume ID"))
			return
		}

		resume, err := h.svc.GetByID(r.Context(), resumeID)
		if err != nil {
			slog.Error("fetching resume for ownership check", "error", err)
			api.HandleError(w, api.ErrInternalServer)
			return
		}
		if resume == nil {
			api.HandleError(w, api.ErrResumeNotFound)
			return
		}

		// CRITICAL: Ownership check
		if resume.UserID.String() != claims.UserID {
			slog.Warn("ownership violation attempt",
				"resume_id", resumeID,
				"resume_owner", resume.UserID,
				"requester", claims.UserID,
				"path", r.URL.Path,
				"method", r.Method,
			)
			h.publishViolation(r, claims.UserID, resumeID)
			api.HandleError(w, api.ErrOwnershipViolation)
			return
		}

		ctx := SetResumeInContext(r.Context(), resume)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) publishViolation(r *http.Request, requesterID string, resumeID uuid.UUID) {
	if h.publisher == nil {
		return
	}
	requester, err := uuid.Parse(requesterID)
	if err != nil {
		return
	}
	pubErr := h.publisher.PublishAuditEvent(r.Context(), nats.AuditEvent{
		UserID:       requester,
		EventType:    "ownership.violation",
		Severity:     "warn",
		ResourceType: "resume",
		ResourceID:   resumeID.String(),
		Details:      r.Method + " " + r.URL.Path,
		Timestamp:    time.Now().UTC(),
	})
	if pubErr != nil {
		slog.Warn("publishing ownership violation event", "error", pubErr)
	}
}
