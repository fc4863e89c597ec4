// Package fuse orchestrates per-mode ingestion of the raw extractor
// outputs: flattening the OCR+QR merge JSON, folding in optional web-scrape
// enrichment, or passing an operator spreadsheet through, then reconciling
// columns and merging rows into one fused table per run.
package fuse

import (
	_ "embed"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"

	"github.com/expofuse/expofuse/pkg/errors"
	"github.com/expofuse/expofuse/pkg/reconcile"
)

//go:embed mapping.yaml
var defaultMappingYAML []byte

// Mapping configures how extractor output columns map onto the canonical
// schema: field renames, bilingual pair conventions, alias groups and
// junk-column patterns.
type Mapping struct {
	FieldMapping map[string]string            `yaml:"field_mapping"`
	Bilingual    []reconcile.BilingualPattern `yaml:"bilingual"`
	Aliases      []reconcile.AliasGroup       `yaml:"aliases"`
	JunkColumns  []string                     `yaml:"junk_columns"`

	junk []*regexp.Regexp
}

// DefaultMapping parses the embedded mapping document.
func DefaultMapping() *Mapping {
	m, err := parseMapping(defaultMappingYAML)
	if err != nil {
		// The embedded document is validated by tests; reaching this is a
		// build defect.
		panic(err)
	}
	return m
}

// LoadMapping reads a mapping override from a YAML file.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	m, err := parseMapping(data)
	if err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return m, nil
}

func parseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for _, pattern := range m.JunkColumns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		m.junk = append(m.junk, re)
	}
	return &m, nil
}

// Column maps an extractor field name to its canonical column, defaulting
// to the field name itself.
func (m *Mapping) Column(field string) string {
	if canonical, ok := m.FieldMapping[field]; ok {
		return canonical
	}
	return field
}

// IsJunk reports whether a column matches the junk patterns.
func (m *Mapping) IsJunk(column string) bool {
	for _, re := range m.junk {
		if re.MatchString(column) {
			return true
		}
	}
	return false
}
