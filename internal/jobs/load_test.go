package jobs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "jobs.yaml", `
- title: Engenheiro de Dados
  company: DataCorp
  location: Remoto
  requirements: SQL, Python, Airflow
- id: 9
  title: SRE
  company: Infra Co
  location: Recife, PE
  requirements: Kubernetes, Go
`)

	records, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Company != "DataCorp" || records[1].ID != 9 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestLoadFileJSON(t *testing.T) {
	path := writeFile(t, "jobs.json", `[{"id": "4", "title": "QA", "company": "Testes SA", "location": "Remoto", "requirements": "Cypress"}]`)

	records, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].ID != 4 {
		t.Fatalf("weakly typed id not decoded: %+v", records)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown field", content: `[{"title": "x", "salary": 10}]`, want: "salary"},
		{name: "invalid record", content: `[{"title": "x"}]`, want: "record 1"},
		{name: "not a list", content: `title: x`, want: "parse jobs file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, "jobs.yaml", tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist error, got %v", err)
	}
}
