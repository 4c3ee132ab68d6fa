package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sjsage522/reviewworker/internal/crawler"
	"sjsage522/reviewworker/logger"
	scrapeerrors "sjsage522/reviewworker/pkg/errors"
)

// Document is the on-disk layout of a run's artifact
type Document struct {
	Reviews []crawler.ReviewRecord `json:"reviews"`
}

// FileSink writes one JSON document per source, overwriting the previous run
type FileSink struct {
	// Dir holds the per-source files
	Dir string
	// Path, when set, is used instead of the per-source file name
	Path string
}

// NewFileSink creates a sink writing into dir, or to path when it is not empty
func NewFileSink(dir, path string) *FileSink {
	return &FileSink{Dir: dir, Path: path}
}

// FileName returns the fixed artifact name of a source
func FileName(source string) string {
	return source + "_reviews.json"
}

// Target returns where records of source are written
func (s *FileSink) Target(source string) string {
	if s.Path != "" {
		return s.Path
	}
	return filepath.Join(s.Dir, FileName(source))
}

// Write serialises records to a temporary file and renames it over the
// target, so readers never see a half-written document.
func (s *FileSink) Write(source string, records []crawler.ReviewRecord) (string, error) {
	target := s.Target(source)
	if records == nil {
		records = []crawler.ReviewRecord{}
	}

	data, err := json.MarshalIndent(Document{Reviews: records}, "", "  ")
	if err != nil {
		return "", scrapeerrors.NewSink(source, "failed to encode reviews", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", scrapeerrors.NewSink(source, fmt.Sprintf("failed to create %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return "", scrapeerrors.NewSink(source, "failed to create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", scrapeerrors.NewSink(source, "failed to write reviews", err)
	}
	if err := tmp.Close(); err != nil {
		return "", scrapeerrors.NewSink(source, "failed to close temp file", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", scrapeerrors.NewSink(source, "failed to set permissions", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", scrapeerrors.NewSink(source, fmt.Sprintf("failed to replace %s", target), err)
	}

	logger.ForSink().Info().
		Str("source", source).
		Str("path", target).
		Int("reviews", len(records)).
		Msg("Wrote reviews")
	return target, nil
}

// ReadJSON parses an artifact written by Write
func ReadJSON(path string) ([]crawler.ReviewRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, scrapeerrors.NewSink("", fmt.Sprintf("failed to read %s", path), err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, scrapeerrors.NewSink("", fmt.Sprintf("failed to decode %s", path), err)
	}
	return doc.Reviews, nil
}
