package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dubber/internal/deps"
	"dubber/internal/pipeline"
	"dubber/internal/preflight"
	"dubber/internal/stage"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check external tools, directories and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			binaries := preflight.CheckSystemDeps(cfg)
			rows := make([][]string, 0, len(binaries))
			for _, status := range binaries {
				rows = append(rows, []string{status.Name, colorizeStatus(binaryKind(status), colorize), binaryDetail(status)})
			}
			fmt.Fprintln(out, renderTable([]string{"Dependency", "Status", "Detail"}, rows, nil))

			checks := preflight.RunAll(cmd.Context(), cfg)
			rows = rows[:0]
			for _, result := range checks {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				rows = append(rows, []string{result.Name, colorizeStatus(kind, colorize), result.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			p, err := pipeline.NewFromConfig(cmd.Context(), cfg, nil, logger)
			if err != nil {
				return err
			}
			rows = rows[:0]
			for _, health := range p.Health(cmd.Context()) {
				rows = append(rows, []string{health.Name, colorizeStatus(healthKind(health), colorize), health.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Stage", "Status", "Detail"}, rows, nil))

			missing := len(deps.MissingRequired(binaries))
			failed := len(preflight.Failed(checks))
			if missing > 0 || failed > 0 {
				return errors.New(statusSummary(missing, failed))
			}
			return nil
		},
	}
}

func binaryKind(status deps.Status) statusKind {
	switch {
	case status.Available:
		return statusOK
	case status.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func healthKind(health stage.Health) statusKind {
	switch {
	case !health.Ready:
		return statusError
	case health.Degraded:
		return statusWarn
	default:
		return statusOK
	}
}

func binaryDetail(status deps.Status) string {
	if status.Available {
		return status.Path
	}
	if status.Detail != "" {
		return status.Detail
	}
	return status.Description
}

func statusSummary(missing, failed int) string {
	return fmt.Sprintf("%d required tool(s) missing, %d check(s) failed", missing, failed)
}
