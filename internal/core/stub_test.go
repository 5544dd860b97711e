// ABOUTME: Shared test doubles for the core package
// ABOUTME: Stub provider with scriptable results per operation
package core

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/soberpath/recall/internal/config"
	"github.com/soberpath/recall/internal/models"
	"github.com/soberpath/recall/internal/storage/sqlite"
)

type stubProvider struct {
	classifyResult models.ClassificationResult
	classifyErr    error
	analysis       models.ProfileAnalysis
	analysisErr    error
	summary        string
	summaryErr     error
	embedding      []float64
	embedErr       error

	classifyCalls int
	embedCalls    int
}

func (s *stubProvider) Classify(_ context.Context, text string) (models.ClassificationResult, error) {
	s.classifyCalls++
	if s.classifyErr != nil {
		return models.ClassificationResult{}, s.classifyErr
	}
	return s.classifyResult, nil
}

func (s *stubProvider) AnalyzeProfile(_ context.Context, _, _ string) (models.ProfileAnalysis, error) {
	if s.analysisErr != nil {
		return models.ProfileAnalysis{}, s.analysisErr
	}
	return s.analysis, nil
}

func (s *stubProvider) Summarize(_ context.Context, _ string) (string, error) {
	if s.summaryErr != nil {
		return "", s.summaryErr
	}
	return s.summary, nil
}

func (s *stubProvider) GenerateEmbedding(_ context.Context, _ string) ([]float64, error) {
	s.embedCalls++
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	return s.embedding, nil
}

func newCoreStorage(t *testing.T) *sqlite.Storage {
	t.Helper()
	storage, err := sqlite.NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func newCoreUser(t *testing.T, storage *sqlite.Storage) *models.User {
	t.Helper()
	user, err := storage.Users.FindOrCreate("tg-core")
	if err != nil {
		t.Fatalf("FindOrCreate error: %v", err)
	}
	return user
}

func testConfig() *config.Config {
	return &config.Config{
		RetrievalLimit: 5,
		MinToConfirm:   3,
		MaxRetries:     0,
	}
}

func nopLog() zerolog.Logger {
	return zerolog.Nop()
}
