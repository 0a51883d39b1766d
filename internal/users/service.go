package users

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/resumeforge/resumeforge/internal/usage"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, email, name, passwordHash string) (*User, error) {
	now := time.Now()
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Plan:         usage.PlanFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

func (s *Service) UpdatePlan(ctx context.Context, id uuid.UUID, plan usage.PlanTier) error {
	return s.repo.UpdatePlan(ctx, id, plan)
}

// PlanFor resolves the plan tier used for quota checks. Lookup failures
// fall back to the free tier so that a database outage cannot grant
// unlimited usage, only the most conservative limits.
func (s *Service) PlanFor(ctx context.Context, id uuid.UUID) usage.PlanTier {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil || user == nil {
		if err != nil {
			slog.Warn("resolving plan tier", "user_id", id, "error", err)
		}
		return usage.PlanFree
	}
	return user.Plan
}
