package resumes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResumePlainText(t *testing.T) {
	r := &Resume{
		Title: "Backend Engineer",
		Basics: Basics{
			FullName: "Jamie Doe",
			Headline: "Go developer",
			Summary:  "Seven years building services.",
		},
		Work:   json.RawMessage(`[{"company":"Acme","role":"Engineer"}]`),
		Skills: json.RawMessage(`["Go","PostgreSQL"]`),
	}

	text := r.PlainText()
	assert.Contains(t, text, "Backend Engineer")
	assert.Contains(t, text, "Jamie Doe")
	assert.Contains(t, text, "Seven years building services.")
	assert.Contains(t, text, "Acme")
	assert.Contains(t, text, "PostgreSQL")
}

func TestResumePlainText_EmptySections(t *testing.T) {
	r := &Resume{Title: "Minimal"}
	assert.Equal(t, "Minimal\n", r.PlainText())
}
