// Package jobs holds the job vacancy model, the chat-facing matcher and the
// service that manages records in the store.
package jobs

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/skillbridge-assistant/internal/utils"
)

const (
	MaxTitleLength        = 120
	MaxRequirementsLength = 300
	MaxCompanyLength      = 100
	MaxLocationLength     = 200

	// MatchRequirementsLength bounds the requirements shown in a chat reply.
	MatchRequirementsLength = 400
	// MaxMatches bounds the number of matches returned by a search.
	MaxMatches = 5
)

// ErrInvalidRecord is returned when a record fails validation.
var ErrInvalidRecord = errors.New("invalid job record")

// Record is a job vacancy as kept in the store.
type Record struct {
	ID           int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Title        string `json:"title" yaml:"title"`
	Company      string `json:"company" yaml:"company"`
	Location     string `json:"location" yaml:"location"`
	Requirements string `json:"requirements" yaml:"requirements"`
}

// Validate checks that every field is present and within its length limit.
func (r Record) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"title", r.Title, MaxTitleLength},
		{"company", r.Company, MaxCompanyLength},
		{"location", r.Location, MaxLocationLength},
		{"requirements", r.Requirements, MaxRequirementsLength},
	}

	var problems []string
	for _, f := range fields {
		switch {
		case strings.TrimSpace(f.value) == "":
			problems = append(problems, fmt.Sprintf("%s is required", f.name))
		case utf8.RuneCountInString(f.value) > f.max:
			problems = append(problems, fmt.Sprintf("%s must be at most %d characters", f.name, f.max))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(problems, "; "))
	}
	return nil
}

// Normalize trims surrounding whitespace from every text field.
func (r Record) Normalize() Record {
	r.Title = strings.TrimSpace(r.Title)
	r.Company = strings.TrimSpace(r.Company)
	r.Location = strings.TrimSpace(r.Location)
	r.Requirements = strings.TrimSpace(r.Requirements)
	return r
}

// Match is a record projected for chat display.
type Match struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	Location     string `json:"location"`
	Requirements string `json:"requirements"`
}

// NewMatch projects r, shortening its requirements.
func NewMatch(r Record) Match {
	return Match{
		ID:           r.ID,
		Title:        r.Title,
		Company:      r.Company,
		Location:     r.Location,
		Requirements: utils.Shorten(r.Requirements, MatchRequirementsLength),
	}
}
