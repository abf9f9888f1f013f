// Command dubber dubs English videos into French.
//
// `dubber run` drives the full pipeline for one input file and prints a stage
// summary. Sessions are kept under the configured sessions directory and can
// be listed, inspected and removed with `dubber sessions`. `dubber status`
// reports missing tools, credentials and degraded stages before a run, and
// `dubber logs` tails the run log, optionally for a single session.
package main
