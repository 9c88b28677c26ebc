package documents

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/spigell/skillbridge-assistant/internal/logger"
)

// SupportedExtensions lists the file types DirLoader reads.
var SupportedExtensions = []string{".pdf", ".txt", ".md"}

// DirLoader reads documents from a single directory.
type DirLoader struct {
	dir    string
	logger *zap.Logger
}

// NewDirLoader creates a loader over dir.
func NewDirLoader(dir string, log *zap.Logger) *DirLoader {
	return &DirLoader{dir: dir, logger: logger.OrNop(log)}
}

// Dir returns the directory the loader reads from.
func (l *DirLoader) Dir() string {
	return l.dir
}

// LoadAll reads supported files in name order. A missing directory yields no
// documents; unreadable files are logged and skipped.
func (l *DirLoader) LoadAll(ctx context.Context) ([]Document, error) {
	entries, err := os.ReadDir(l.dir)
	if os.IsNotExist(err) {
		l.logger.Warn("document directory does not exist", zap.String("dir", l.dir))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var docs []Document
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !IsSupported(entry.Name()) {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		text, err := readText(path)
		if err != nil {
			l.logger.Warn("skipping unreadable document", zap.String("file", path), zap.Error(err))
			continue
		}

		docs = append(docs, NewDocument(entry.Name(), text))
		l.logger.Debug("document loaded", zap.String("file", path), zap.Int("chars", len(text)))
	}

	l.logger.Info("documents loaded", zap.String("dir", l.dir), zap.Int("count", len(docs)))
	return docs, nil
}

// IsSupported reports whether path has a readable extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func readText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readPDF(path string) (text string, err error) {
	// The pdf reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}
