// Package validation checks pipeline inputs and outputs before they are
// used: parsed year sheets against their struct constraints, and the output
// path before any step runs.
package validation
