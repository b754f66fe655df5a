package run

import (
	"encoding/json"
	"os"
	"time"

	"enefviz/domain/core"
	"enefviz/internal/errors"
)

// CodeVersion is stamped into every manifest
const CodeVersion = "1.0.0"

// Manifest records how a static report was produced. It is written next to
// the chart so a figure can be traced back to its input file.
type Manifest struct {
	ReportID      core.ReportID `json:"report_id"`
	InputFile     string        `json:"input_file"`
	Rows          int           `json:"rows"`
	MissingCells  int           `json:"missing_cells"`
	EligibleRows  int           `json:"eligible_rows"`
	ExcludedRows  int           `json:"excluded_rows"`
	Groups        []string      `json:"groups"`
	Categories    []string      `json:"categories"`
	Outputs       []string      `json:"outputs"`
	Fingerprint   Fingerprint   `json:"fingerprint"`
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   time.Time     `json:"completed_at"`
	DurationMilli int64         `json:"duration_ms"`
}

// Validate checks the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.ReportID).IsEmpty() {
		return errors.ValidationError("manifest report_id cannot be empty")
	}
	if m.Fingerprint.InputHash.IsEmpty() {
		return errors.ValidationError("manifest input_hash cannot be empty")
	}
	if m.Fingerprint.Fingerprint.IsEmpty() {
		return errors.ValidationError("manifest fingerprint cannot be empty")
	}
	if len(m.Outputs) == 0 {
		return errors.ValidationError("manifest lists no outputs")
	}
	if m.CompletedAt.Before(m.StartedAt) {
		return errors.ValidationError("manifest completes before it starts")
	}
	return nil
}

// Complete stamps the end time
func (m *Manifest) Complete(at time.Time) {
	m.CompletedAt = at
	m.DurationMilli = at.Sub(m.StartedAt).Milliseconds()
}

// Write stores the manifest as indented JSON
func (m *Manifest) Write(path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write manifest %s", path)
	}
	return nil
}

// ReadManifest loads a manifest written by Write
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("manifest " + path)
		}
		return nil, errors.Wrapf(err, "failed to read manifest %s", path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WithCode(errors.CodeDataFormat, errors.Wrapf(err, "failed to decode manifest %s", path))
	}
	return &m, nil
}
