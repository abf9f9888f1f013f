// Package stage defines the readiness report shared by pipeline stages.
//
// Adapters that can tell ahead of a run whether they will succeed, fall back
// or fail implement Checker; `dubber status` renders the results.
package stage
