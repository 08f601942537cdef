package adapter

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	m "gooze.dev/pkg/rulemig/internal/model"
)

// ReportStore persists run reports.
type ReportStore interface {
	SaveReport(path m.Path, report m.RunReport) error
	LoadReport(path m.Path) (m.RunReport, error)
}

// YAMLReportStore stores a run report as a single YAML document.
type YAMLReportStore struct {
	fs SourceFSAdapter
}

// NewYAMLReportStore constructs a YAMLReportStore writing through fs.
func NewYAMLReportStore(fs SourceFSAdapter) *YAMLReportStore {
	return &YAMLReportStore{fs: fs}
}

// SaveReport encodes report and writes it to path.
func (s *YAMLReportStore) SaveReport(path m.Path, report m.RunReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := s.fs.WriteFile(path, data, 0o644); err != nil {
		slog.Error("Failed to write report", "path", path, "error", err)
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}

	return nil
}

// LoadReport reads and decodes the report stored at path.
func (s *YAMLReportStore) LoadReport(path m.Path) (m.RunReport, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m.RunReport{}, fmt.Errorf("report %s does not exist: %w", path, err)
		}

		return m.RunReport{}, fmt.Errorf("failed to read report %s: %w", path, err)
	}

	var report m.RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.RunReport{}, fmt.Errorf("failed to parse report %s: %w", path, err)
	}

	return report, nil
}
