package sequencer

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

const (
	ReportFileName      = ".deploykit.report.json"
	ReportSchemaVersion = "1.0"
)

// RunReport is the persisted record of a single run, written for auditing.
// It never feeds back into execution: a new run always starts from step one.
type RunReport struct {
	SchemaVersion string       `json:"schema_version"`
	RunID         string       `json:"run_id"`
	ManifestPath  string       `json:"manifest_path"`
	Status        Status       `json:"status"`
	FailedStep    string       `json:"failed_step,omitempty"`
	Detail        string       `json:"detail,omitempty"`
	Steps         []StepResult `json:"steps"`
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    time.Time    `json:"finished_at"`
}

// NewRunReport creates a report for a run that is about to start.
func NewRunReport(manifestPath string) *RunReport {
	return &RunReport{
		SchemaVersion: ReportSchemaVersion,
		RunID:         uuid.New().String(),
		ManifestPath:  manifestPath,
		StartedAt:     time.Now(),
	}
}

// Record fills the report from a finished run's outcome.
func (r *RunReport) Record(outcome *Outcome) {
	r.Status = outcome.Status
	r.FailedStep = outcome.FailedStep
	if outcome.Failure != nil {
		r.Detail = outcome.Failure.Err.Error()
	}
	r.Steps = outcome.Results
	r.FinishedAt = time.Now()
}

// Save writes the report to the report file in the current directory.
func (r *RunReport) Save() error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize run report: %w", err)
	}

	if err := os.WriteFile(ReportFileName, data, 0644); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}

	return nil
}

// LoadRunReport reads the report left by a previous run.
// Returns nil if no report file exists.
func LoadRunReport() (*RunReport, error) {
	if _, err := os.Stat(ReportFileName); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(ReportFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read run report: %w", err)
	}

	var report RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse run report: %w", err)
	}

	return &report, nil
}
