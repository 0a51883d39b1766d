package resumes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *CreateResumeRequest) (*Resume, error) {
	now := time.Now()

	basicsJSON, err := json.Marshal(req.Basics)
	if err != nil {
		return nil, fmt.Errorf("marshaling basics: %w", err)
	}

	row := &ResumeRow{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     req.Title,
		Basics:    basicsJSON,
		Work:      defaultJSON(req.Work, "[]"),
		Education: defaultJSON(req.Education, "[]"),
		Skills:    defaultJSON(req.Skills, "[]"),
		Projects:  defaultJSON(req.Projects, "[]"),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}

	return rowToResume(row)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Resume, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return rowToResume(row)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, params ListResumesParams) ([]*Resume, int64, error) {
	offset := (params.Page - 1) * params.PageSize

	rows, err := s.repo.ListByUser(ctx, userID, params.PageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	resumes := make([]*Resume, 0, len(rows))
	for _, row := range rows {
		resume, err := rowToResume(row)
		if err != nil {
			return nil, 0, err
		}
		resumes = append(resumes, resume)
	}

	return resumes, count, nil
}

func (s *Service) Update(ctx context.Context, resume *Resume, req *UpdateResumeRequest) (*Resume, error) {
	title := resume.Title
	if req.Title != nil {
		title = *req.Title
	}

	basics := resume.Basics
	if req.Basics != nil {
		basics = *req.Basics
	}
	basicsJSON, err := json.Marshal(basics)
	if err != nil {
		return nil, fmt.Errorf("marshaling basics: %w", err)
	}

	work := resume.Work
	if req.Work != nil {
		work = *req.Work
	}
	education := resume.Education
	if req.Education != nil {
		education = *req.Education
	}
	skills := resume.Skills
	if req.Skills != nil {
		skills = *req.Skills
	}
	projects := resume.Projects
	if req.Projects != nil {
		projects = *req.Projects
	}

	row := &ResumeRow{
		ID:        resume.ID,
		UserID:    resume.UserID,
		Title:     title,
		Basics:    basicsJSON,
		Work:      defaultJSON(work, "[]"),
		Education: defaultJSON(education, "[]"),
		Skills:    defaultJSON(skills, "[]"),
		Projects:  defaultJSON(projects, "[]"),
		CreatedAt: resume.CreatedAt,
		UpdatedAt: time.Now(),
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, err
	}

	return rowToResume(row)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func rowToResume(row *ResumeRow) (*Resume, error) {
	var basics Basics
	if err := json.Unmarshal(row.Basics, &basics); err != nil {
		return nil, fmt.Errorf("unmarshaling basics: %w", err)
	}

	return &Resume{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		Basics:    basics,
		Work:      row.Work,
		Education: row.Education,
		Skills:    row.Skills,
		Projects:  row.Projects,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		DeletedAt: row.DeletedAt,
	}, nil
}

func defaultJSON(data json.RawMessage, fallback string) []byte {
	if len(data) == 0 {
		return []byte(fallback)
	}
	return data
}
