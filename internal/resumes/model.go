package resumes

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Resume struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Title     string          `json:"title"`
	Basics    Basics          `json:"basics"`
	Work      json.RawMessage `json:"work"`
	Education json.RawMessage `json:"education"`
	Skills    json.RawMessage `json:"skills"`
	Projects  json.RawMessage `json:"projects"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt *time.Time      `json:"deleted_at,omitempty"`
}

type Basics struct {
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Headline string `json:"headline,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// ResumeRow is the database representation with JSONB fields as raw bytes.
type ResumeRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Basics    []byte
	Work      []byte
	Education []byte
	Skills    []byte
	Projects  []byte
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type CreateResumeRequest struct {
	Title     string          `json:"title" validate:"required,min=1,max=255"`
	Basics    Basics          `json:"basics"`
	Work      json.RawMessage `json:"work"`
	Education json.RawMessage `json:"education"`
	Skills    json.RawMessage `json:"skills"`
	Projects  json.RawMessage `json:"projects"`
}

type UpdateResumeRequest struct {
	Title     *string          `json:"title" validate:"omitempty,min=1,max=255"`
	Basics    *Basics          `json:"basics"`
	Work      *json.RawMessage `json:"work"`
	Education *json.RawMessage `json:"education"`
	Skills    *json.RawMessage `json:"skills"`
	Projects  *json.RawMessage `json:"projects"`
}

type ListResumesParams struct {
	Page     int
	PageSize int
}

func DefaultListParams() ListResumesParams {
	return ListResumesParams{
		Page:     1,
		PageSize: 20,
	}
}

// PlainText flattens the resume into prompt-ready text. Section payloads are
// stored as JSON documents, so they are included verbatim after the basics.
func (r *Resume) PlainText() string {
	var b strings.Builder
	b.WriteString(r.Title)
	b.WriteString("\n")
	if r.Basics.FullName != "" {
		b.WriteString(r.Basics.FullName)
		b.WriteString("\n")
	}
	if r.Basics.Headline != "" {
		b.WriteString(r.Basics.Headline)
		b.WriteString("\n")
	}
	if r.Basics.Location != "" {
		b.WriteString(r.Basics.Location)
		b.WriteString("\n")
	}
	if r.Basics.Summary != "" {
		b.WriteString(r.Basics.Summary)
		b.WriteString("\n")
	}
	for _, section := range []json.RawMessage{r.Work, r.Education, r.Skills, r.Projects} {
		if len(section) > 0 {
			b.Write(section)
			b.WriteString("\n")
		}
	}
	return b.String()
}
