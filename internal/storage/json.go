package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lazydotnet/internal/domain"
)

// Save writes a run's outcome and failures to the configured report file.
func (s *JSONStorage) Save(results []domain.TestRunResult, failures []domain.TestFailure, duration time.Duration) error {
	passed := 0
	failed := 0
	for _, r := range results {
		if r.Passed() {
			passed++
		} else {
			failed++
		}
	}

	report := domain.RunReport{
		Meta: domain.RunReportMeta{
			TotalTests:      len(results),
			PassedTests:     passed,
			FailedTests:     failed,
			Duration:        duration.String(),
			DurationSeconds: duration.Seconds(),
			Timestamp:       time.Now().Format(time.RFC3339),
		},
		Failures: failures,
	}
	return s.SaveReport(&report)
}

// SaveReport writes the full report to the configured report file.
func (s *JSONStorage) SaveReport(report *domain.RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	path := s.cfg.GetReportPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Load reads the last run report from the configured report file.
func (s *JSONStorage) Load() (*domain.RunReport, error) {
	path := s.cfg.GetReportPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}
	var report domain.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &report, nil
}
