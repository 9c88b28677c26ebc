package documents

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDirLoaderReadsSupportedFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.md":       "# Projeto\nSkillBridge",
		"a.txt":      "texto\x00 simples",
		"c.csv":      "ignored",
		"broken.pdf": "not a pdf",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	core, logs := observer.New(zapcore.WarnLevel)
	docs, err := NewDirLoader(dir, zap.New(core)).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %+v", docs)
	}
	if docs[0].Name != "a.txt" || docs[1].Name != "b.md" {
		t.Fatalf("unexpected order: %q, %q", docs[0].Name, docs[1].Name)
	}
	if docs[0].Text != "texto simples" {
		t.Fatalf("NUL bytes must be removed, got %q", docs[0].Text)
	}
	if logs.FilterMessage("skipping unreadable document").Len() != 1 {
		t.Fatal("expected the broken pdf to be skipped with a warning")
	}
}

func TestDirLoaderMissingDirectory(t *testing.T) {
	docs, err := NewDirLoader(filepath.Join(t.TempDir(), "missing"), nil).LoadAll(context.Background())
	if err != nil || len(docs) != 0 {
		t.Fatalf("expected no documents and no error, got %v (%v)", docs, err)
	}
}

func TestIsSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"doc/Projeto.PDF": true,
		"notes.md":        true,
		"a.txt":           true,
		"image.png":       false,
		"noext":           false,
	} {
		if got := IsSupported(path); got != want {
			t.Fatalf("IsSupported(%q) = %v, want %v", path, got, want)
		}
	}
}
