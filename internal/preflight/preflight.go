package preflight

import (
	"context"

	"golang.org/x/sync/errgroup"

	"dubber/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory and credential checks concurrently. Results
// keep a fixed order regardless of completion order.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	checks := []func(context.Context) Result{
		func(context.Context) Result { return CheckDirectoryAccess("Sessions directory", cfg.Paths.SessionsDir) },
		func(context.Context) Result { return CheckDirectoryAccess("State directory", cfg.Paths.StateDir) },
		func(context.Context) Result { return CheckDirectoryAccess("Log directory", cfg.Paths.LogDir) },
		func(context.Context) Result {
			return CheckCredential("Gemini", cfg.Gemini.APIKey, config.EnvGoogleAPIKey)
		},
		func(ctx context.Context) Result {
			return CheckElevenLabs(ctx, cfg.ElevenLabs.BaseURL, cfg.ElevenLabs.APIKey)
		},
	}

	results := make([]Result, len(checks))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, check := range checks {
		group.Go(func() error {
			results[i] = check(groupCtx)
			return nil
		})
	}
	_ = group.Wait()
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
