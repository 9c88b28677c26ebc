package jobs

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRecordValidate(t *testing.T) {
	t.Parallel()

	valid := DefaultSeed()[0]

	tests := []struct {
		name    string
		mutate  func(*Record)
		wantErr string
	}{
		{name: "valid", mutate: func(*Record) {}},
		{name: "blank title", mutate: func(r *Record) { r.Title = "  " }, wantErr: "title is required"},
		{name: "long company", mutate: func(r *Record) { r.Company = strings.Repeat("a", MaxCompanyLength+1) }, wantErr: "company must be at most 100"},
		{name: "long requirements", mutate: func(r *Record) { r.Requirements = strings.Repeat("b", MaxRequirementsLength+1) }, wantErr: "requirements must be at most 300"},
		{name: "multibyte within limit", mutate: func(r *Record) { r.Title = strings.Repeat("ç", MaxTitleLength) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := valid
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidRecord) || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewMatchShortensRequirements(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 450)
	m := NewMatch(Record{ID: 1, Title: "t", Requirements: long})

	if !strings.HasSuffix(m.Requirements, "...") {
		t.Fatalf("expected ellipsis, got %q", m.Requirements[len(m.Requirements)-5:])
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(m.Requirements, "...")); n != MatchRequirementsLength {
		t.Fatalf("expected %d characters, got %d", MatchRequirementsLength, n)
	}

	short := NewMatch(Record{ID: 2, Requirements: "SQL"})
	if short.Requirements != "SQL" {
		t.Fatalf("short requirements must be kept, got %q", short.Requirements)
	}
}
