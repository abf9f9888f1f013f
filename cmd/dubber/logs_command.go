package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"dubber/internal/logging"
	"dubber/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines     int
		sessionID string
		follow    bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			filter := logs.Filter{SessionID: sessionID}
			out := cmd.OutOrStdout()

			tail, offset, err := logs.Last(path, lines, filter)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, filter, logs.DefaultPollInterval, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().StringVar(&sessionID, "session", "", "Only show lines for this session ID")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	return cmd
}
