// Package preflight provides readiness checks for the directories, credentials
// and external binaries dubber depends on.
//
// The CLI "dubber status" command runs RunAll and CheckSystemDeps to display
// health ahead of a run. The pipeline itself never calls preflight: a missing
// credential or tool is detected at call time and routed to the owning stage's
// failure or fallback path.
package preflight
