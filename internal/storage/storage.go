package storage

import (
	"time"

	"lazydotnet/internal/config"
	"lazydotnet/internal/domain"
)

// Storage persists and loads run reports (e.g. for the failures viewer).
type Storage interface {
	Save(results []domain.TestRunResult, failures []domain.TestFailure, duration time.Duration) error
	Load() (*domain.RunReport, error)
	// SaveReport writes the full report (e.g. after resolved-flag updates).
	SaveReport(report *domain.RunReport) error
}

// JSONStorage stores reports in a JSON file under the configured report path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's report path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
