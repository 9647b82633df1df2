package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/marq/internal/model"
)

// Snapshot converts a result to a canonical value: scenario name, blocks,
// error, probes and imports.
func Snapshot(name string, result *Result) model.Value {
	blocks := make(model.Array, len(result.Blocks))
	for i, b := range result.Blocks {
		blocks[i] = model.DictOf(
			model.P("depth", model.Int(b.Depth)),
			model.P("marker", model.Str(b.Marker)),
			model.P("text", model.Str(b.Text)),
		)
	}

	probes := make(model.Array, len(result.Probes))
	for i, p := range result.Probes {
		probes[i] = model.DictOf(
			model.P("file", model.Str(p.File)),
			model.P("at", model.Str(p.At)),
			model.P("values", strs(p.Values)),
		)
	}

	imports := make(model.Array, len(result.Imports))
	for i, imp := range result.Imports {
		imports[i] = model.DictOf(
			model.P("from", model.Str(imp.From)),
			model.P("path", model.Str(imp.Path)),
			model.P("found", model.Bool(imp.Found)),
			model.P("bindings", strs(imp.Bindings)),
		)
	}

	snapshot := model.DictOf(
		model.P("scenario_name", model.Str(name)),
		model.P("blocks", blocks),
		model.P("probes", probes),
		model.P("imports", imports),
	)
	if result.Error != "" {
		snapshot.Set("error", model.Str(result.Error))
	}
	return snapshot
}

func strs(ss []string) model.Array {
	out := make(model.Array, len(ss))
	for i, s := range ss {
		out[i] = model.Str(s)
	}
	return out
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := model.MarshalCanonical(Snapshot(scenarioName, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
