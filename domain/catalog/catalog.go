// Package catalog holds the human-facing metadata of the survey variables:
// labels, question wording, modality names and preset chart ranges.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"enefviz/internal/errors"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Variable describes one survey column
type Variable struct {
	Code          string            `yaml:"code" json:"code"`
	Label         string            `yaml:"label" json:"label"`
	Question      string            `yaml:"question" json:"question,omitempty"`
	TitleFragment string            `yaml:"title_fragment" json:"title_fragment,omitempty"`
	Cross         bool              `yaml:"cross" json:"cross"`
	YRange        []float64         `yaml:"y_range" json:"y_range,omitempty"`
	Modalities    map[string]string `yaml:"modalities" json:"modalities,omitempty"`
}

// ModalityLabel names a category code, falling back to the code itself
func (v Variable) ModalityLabel(key string) string {
	if label, ok := v.Modalities[key]; ok {
		return label
	}
	return key
}

// TrendOption is one entry of the dashboard dropdown
type TrendOption struct {
	Code     string `yaml:"code" json:"code"`
	Label    string `yaml:"label" json:"label"`
	Question string `yaml:"question" json:"question"`
}

// TrendSection configures the selector-driven line chart
type TrendSection struct {
	Title   string        `yaml:"title" json:"title"`
	YRange  []float64     `yaml:"y_range" json:"y_range"`
	Options []TrendOption `yaml:"options" json:"options"`
}

// CrossesSection configures the certainty-by-variable view
type CrossesSection struct {
	TitlePrefix string `yaml:"title_prefix" json:"title_prefix"`
	FilePattern string `yaml:"file_pattern" json:"file_pattern"`
	Description string `yaml:"description" json:"description"`
}

// ReportSection configures the static report
type ReportSection struct {
	Title string `yaml:"title" json:"title"`
}

// Catalog is the parsed metadata file
type Catalog struct {
	Source    string         `yaml:"source" json:"source"`
	Report    ReportSection  `yaml:"report" json:"report"`
	Trend     TrendSection   `yaml:"trend" json:"trend"`
	Crosses   CrossesSection `yaml:"crosses" json:"crosses"`
	Variables []Variable     `yaml:"variables" json:"variables"`
}

// Default parses the catalogue compiled into the binary
func Default() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// Parse decodes and validates a catalogue document
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.WithCode(errors.CodeDataFormat, errors.Wrap(err, "failed to parse catalog"))
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Trend.Options) != 2 {
		return errors.ValidationError(fmt.Sprintf("trend selector needs exactly two options, got %d", len(c.Trend.Options)))
	}
	seen := make(map[string]bool, len(c.Variables))
	for _, v := range c.Variables {
		if v.Code == "" {
			return errors.ValidationError("catalog variable without code")
		}
		if seen[v.Code] {
			return errors.ValidationError("duplicate catalog variable " + v.Code)
		}
		seen[v.Code] = true
		if v.YRange != nil && (len(v.YRange) != 2 || v.YRange[0] >= v.YRange[1]) {
			return errors.ValidationError("invalid y_range for " + v.Code)
		}
	}
	return nil
}

// Variable looks up a variable by code, case-insensitively
func (c *Catalog) Variable(code string) (Variable, bool) {
	for _, v := range c.Variables {
		if strings.EqualFold(v.Code, code) {
			return v, true
		}
	}
	return Variable{}, false
}

// VariableOrDefault returns the catalogued variable, or a bare one labelled by its code
func (c *Catalog) VariableOrDefault(code string) Variable {
	if v, ok := c.Variable(code); ok {
		return v
	}
	return Variable{Code: code, Label: code}
}

// CrossVariables lists the variables offered in the crosses view, in file order
func (c *Catalog) CrossVariables() []Variable {
	var out []Variable
	for _, v := range c.Variables {
		if v.Cross {
			out = append(out, v)
		}
	}
	return out
}

// TrendOption looks up a dropdown entry by code
func (c *Catalog) TrendOption(code string) (TrendOption, bool) {
	for _, o := range c.Trend.Options {
		if o.Code == code {
			return o, true
		}
	}
	return TrendOption{}, false
}

// CrossesFile returns the file name holding the series of one cross variable
func (c *Catalog) CrossesFile(code string) string {
	return fmt.Sprintf(c.Crosses.FilePattern, strings.ToLower(code))
}
