package harness

import (
	"github.com/roach88/marq/internal/realize"
)

// ProbeResult is the outcome of one probe.
type ProbeResult struct {
	File   string   `json:"file"`
	At     string   `json:"at"`
	Values []string `json:"values"`
}

// ImportResult is the outcome of one import check.
type ImportResult struct {
	From     string   `json:"from"`
	Path     string   `json:"path"`
	Found    bool     `json:"found"`
	Bindings []string `json:"bindings,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Blocks is the realized document, empty if the run failed.
	Blocks []realize.Block `json:"blocks"`

	// Error is the evaluation or realization error, if any.
	Error string `json:"error,omitempty"`

	Probes  []ProbeResult  `json:"probes,omitempty"`
	Imports []ImportResult `json:"imports,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	doc *realize.Document
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Blocks: []realize.Block{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Rendered returns the rendered document, or "" if the run failed.
func (r *Result) Rendered() string {
	if r.doc == nil {
		return ""
	}
	return r.doc.Render()
}
