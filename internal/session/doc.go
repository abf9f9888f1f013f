// Package session owns dubbing session state: the per-run working directory
// guarded by a flock, and the SQLite catalog recording each session's status
// and its ordered artifact ledger.
//
// A Workspace is created by Start, never reused, and released by Close, which
// removes the transient .scratch directory. Record refuses empty or missing
// artifact paths so a stage cannot hand a phantom file forward.
package session
