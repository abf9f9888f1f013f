package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dubber/internal/config"
	"dubber/internal/session"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Inspect and remove dubbing sessions",
	}
	sessionsCmd.AddCommand(newSessionsListCommand(ctx))
	sessionsCmd.AddCommand(newSessionsShowCommand(ctx))
	sessionsCmd.AddCommand(newSessionsRemoveCommand(ctx))
	return sessionsCmd
}

func newSessionsListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]session.Status, 0, len(statusFlags))
			for _, raw := range statusFlags {
				status, ok := session.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				statuses = append(statuses, status)
			}
			return ctx.withStore(func(_ *config.Config, store *session.Store) error {
				sessions, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(sessions) == 0 {
					fmt.Fprintln(out, "No sessions")
					return nil
				}
				rows := make([][]string, 0, len(sessions))
				for _, s := range sessions {
					rows = append(rows, []string{
						s.ID,
						string(s.Status),
						failureLabel(s),
						filepath.Base(s.SourcePath),
						finalLabel(s),
						s.CreatedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Status", "Failed stage", "Source", "Final", "Created"},
					rows,
					nil,
				))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&statusFlags, "status", nil, "Filter by status (running, completed, failed, blocked)")
	return cmd
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session and its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(formatFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *session.Store) error {
				s, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				switch format {
				case formatJSON:
					return writeJSON(cmd, s)
				case formatYAML:
					return writeYAML(cmd, s)
				}

				out := cmd.OutOrStdout()
				details := [][]string{
					{"ID", s.ID},
					{"Status", string(s.Status)},
					{"Directory", s.Dir},
					{"Source", s.SourcePath},
					{"Created", s.CreatedAt.Local().Format(time.DateTime)},
					{"Updated", s.UpdatedAt.Local().Format(time.DateTime)},
				}
				if s.FinalPath != "" {
					details = append(details, []string{"Final video", s.FinalPath})
				}
				if s.FailedStage != "" {
					details = append(details, []string{"Failed stage", s.FailedStage}, []string{"Error", s.ErrorMessage})
				}
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, details, nil))

				if len(s.Artifacts) > 0 {
					rows := make([][]string, 0, len(s.Artifacts))
					for _, art := range s.Artifacts {
						rows = append(rows, []string{strconv.Itoa(art.Seq), art.Stage, string(art.Kind), filepath.Base(art.Path)})
					}
					fmt.Fprintln(out, renderTable([]string{"#", "Stage", "Kind", "File"}, rows, []columnAlignment{alignRight}))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", formatTable, "Output format: table, json or yaml")
	return cmd
}

func newSessionsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a session directory and its catalog entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withStore(func(_ *config.Config, store *session.Store) error {
				if err := session.Remove(cmd.Context(), store, id); err != nil {
					return fmt.Errorf("remove session %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session %s\n", id)
				return nil
			})
		},
	}
}

func failureLabel(s *session.Session) string {
	if s.FailedStage == "" {
		return "-"
	}
	return s.FailedStage
}

func finalLabel(s *session.Session) string {
	if s.FinalPath == "" {
		return "-"
	}
	return filepath.Base(s.FinalPath)
}
