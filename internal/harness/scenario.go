package harness

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/marq/internal/realize"
)

// DefaultEntry is the entry file of scenarios that name none.
const DefaultEntry = "main.mq"

// Scenario defines a project and what realizing and probing it must yield.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files use it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Entry is the file that is evaluated and realized.
	Entry string `yaml:"entry,omitempty"`

	// Files maps root-relative paths to source text.
	Files map[string]string `yaml:"files"`

	// Expect specifies the document or the error.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Probes resolve expressions of the project speculatively.
	Probes []Probe `yaml:"probes,omitempty"`

	// Imports resolve import paths the way tooling does.
	Imports []ImportCheck `yaml:"imports,omitempty"`

	// Assertions validate the rendered document.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies the expected outcome of realizing the entry.
type ExpectClause struct {
	// Error is the diagnostic code the run must fail with.
	Error string `yaml:"error,omitempty"`

	// Blocks is the exact expected document.
	Blocks []realize.Block `yaml:"blocks,omitempty"`
}

// Probe resolves the expression spelled At in File.
type Probe struct {
	// File defaults to the entry.
	File string `yaml:"file,omitempty"`

	// At is the text of the expression. Its first occurrence is probed.
	At string `yaml:"at"`

	// Values are the expected values in repr form, in production order.
	Values []string `yaml:"values"`
}

// ImportCheck resolves Path as if imported from From.
type ImportCheck struct {
	// From defaults to the entry.
	From string `yaml:"from,omitempty"`

	Path string `yaml:"path"`

	// Bindings are the expected binding names of the module, in order.
	Bindings []string `yaml:"bindings,omitempty"`

	// None expects the path not to yield a module.
	None bool `yaml:"none,omitempty"`
}

// Assertion validates the rendered document.
type Assertion struct {
	Type   string `yaml:"type"`
	Text   string `yaml:"text,omitempty"`
	Marker string `yaml:"marker,omitempty"`
	Count  int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertContains    = "contains"
	AssertNotContains = "not_contains"
	AssertBlockCount  = "block_count"
)

// EntryFile returns the scenario's entry file.
func (s *Scenario) EntryFile() string {
	if s.Entry == "" {
		return DefaultEntry
	}
	return s.Entry
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Files) == 0 {
		return fmt.Errorf("files map is required and must be non-empty")
	}

	for name := range s.Files {
		if path.Ext(name) != ".mq" {
			return fmt.Errorf("files[%s]: source files must end in .mq", name)
		}
	}
	if !s.hasFile(s.EntryFile()) {
		return fmt.Errorf("entry %s is not among the files", s.EntryFile())
	}

	if s.Expect != nil && s.Expect.Error != "" && len(s.Expect.Blocks) > 0 {
		return fmt.Errorf("expect: error and blocks are mutually exclusive")
	}

	for i, p := range s.Probes {
		if p.At == "" {
			return fmt.Errorf("probes[%d]: at is required", i)
		}
		if p.File != "" && !s.hasFile(p.File) {
			return fmt.Errorf("probes[%d]: file %s is not among the files", i, p.File)
		}
	}

	for i, imp := range s.Imports {
		if imp.Path == "" {
			return fmt.Errorf("imports[%d]: path is required", i)
		}
		if imp.None && len(imp.Bindings) > 0 {
			return fmt.Errorf("imports[%d]: none and bindings are mutually exclusive", i)
		}
		if imp.From != "" && !s.hasFile(imp.From) {
			return fmt.Errorf("imports[%d]: from %s is not among the files", i, imp.From)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scenario) hasFile(name string) bool {
	_, ok := s.Files[name]
	return ok
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertContains, AssertNotContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: %s requires text", index, a.Type)
		}
	case AssertBlockCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must not be negative", index)
		}
	default:
		valid := []string{AssertContains, AssertNotContains, AssertBlockCount}
		return fmt.Errorf("assertions[%d]: unknown type %q (valid: %v)", index, a.Type, valid)
	}
	return nil
}

// sortedFiles returns the scenario's file names in lexical order.
func (s *Scenario) sortedFiles() []string {
	names := make([]string, 0, len(s.Files))
	for name := range s.Files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
