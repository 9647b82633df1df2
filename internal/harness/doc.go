// Package harness runs marq scenarios: small multi-file projects with the
// document, probe results and import results they are expected to produce.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: guard_self_reference
//	description: "A show rule that embeds its own node fires once"
//	entry: main.mq
//	files:
//	  main.mq: |
//	    import "util.mq" as u
//	    show strong: it => [(#it)]
//	    [*#u.answer*]
//	  util.mq: |
//	    let answer = 6 * 7
//	expect:
//	  blocks:
//	    - text: "(*42*)"
//	probes:
//	  - at: "u.answer"
//	    values: ["42"]
//	imports:
//	  - path: "util.mq"
//	    bindings: [answer]
//	assertions:
//	  - type: contains
//	    text: "(*42*)"
//
// Instead of blocks, expect.error names the diagnostic code evaluation or
// realization must fail with (for example CAST).
//
// # Assertion Types
//
//   - contains: the rendered document contains text
//   - not_contains: the rendered document does not contain text
//   - block_count: the document has count blocks, only those with marker if set
//
// # Isolation
//
// Every scenario runs against a fresh in-memory SQLite bundle holding its
// files under "/", so "/"-anchored imports resolve against the scenario
// root.
package harness
