package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"merakireboot/internal/history"
	"merakireboot/internal/logging"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded reboot runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(ctx, cmd, func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunTable(runs, logging.ShouldColorize(out)))
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of runs to list (0 for all)")
	historyCmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")

	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-device results of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(ctx, cmd, func(store *history.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				results, err := store.ListResults(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if asJSON {
					if results == nil {
						results = []history.Result{}
					}
					return writeJSON(cmd, struct {
						Run     *history.Run     `json:"run"`
						Results []history.Result `json:"results"`
					}{run, results})
				}

				out := cmd.OutOrStdout()
				color := logging.ShouldColorize(out)
				fmt.Fprintf(out, "Run:          %s\n", run.ID)
				fmt.Fprintf(out, "Organization: %s (%s)\n", run.Organization, valueOrDash(run.OrganizationID))
				fmt.Fprintf(out, "Network:      %s\n", run.NetworkID)
				fmt.Fprintf(out, "Shard:        %s\n", valueOrDash(run.Shard))
				fmt.Fprintf(out, "Interval:     %ds\n", run.IntervalSeconds)
				fmt.Fprintf(out, "Started:      %s\n", formatTimestamp(run.StartedAt))
				fmt.Fprintf(out, "Duration:     %s\n", formatDuration(*run))
				fmt.Fprintf(out, "Outcome:      %s\n", formatOutcome(run.Outcome, color))
				if run.Placeholder {
					fmt.Fprintln(out, "Device list:  unavailable, placeholder dispatched")
				}
				if run.Error != "" {
					fmt.Fprintf(out, "Error:        %s\n", run.Error)
				}
				if len(results) == 0 {
					fmt.Fprintln(out, "No reboot requests recorded")
					return nil
				}
				fmt.Fprintln(out, renderResultTable(results, color))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

// withHistoryStore opens the ledger for read-only commands. A ledger that was
// never created is reported instead of being created empty.
func withHistoryStore(ctx *commandContext, cmd *cobra.Command, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.History.Path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(cmd.OutOrStdout(), "No run history at %s\n", cfg.History.Path)
		if !cfg.History.Enabled {
			fmt.Fprintln(cmd.OutOrStdout(), "Set history.enabled = true in the config file to record runs.")
		}
		return nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func outcomeColors(outcome history.Outcome) text.Colors {
	switch outcome {
	case history.OutcomeCompleted:
		return text.Colors{text.FgGreen}
	case history.OutcomeAborted:
		return text.Colors{text.FgRed}
	case history.OutcomeRunning:
		return text.Colors{text.FgYellow}
	default:
		return nil
	}
}

func statusColors(code int) text.Colors {
	switch {
	case code >= 200 && code < 300:
		return text.Colors{text.FgGreen}
	case code == 0:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgYellow}
	}
}

// newHistoryTable builds a rounded table whose columns are configured by
// header name.
func newHistoryTable(header table.Row, columns ...table.ColumnConfig) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	for i := range columns {
		columns[i].AlignHeader = text.AlignLeft
	}
	tw.SetColumnConfigs(columns)
	return tw
}

func renderRunTable(runs []history.Run, color bool) string {
	tw := newHistoryTable(
		table.Row{"Run", "Started", "Organization", "Network", "Devices", "OK", "Failed", "Outcome", "Duration"},
		table.ColumnConfig{Name: "Devices", Align: text.AlignRight},
		table.ColumnConfig{Name: "OK", Align: text.AlignRight},
		table.ColumnConfig{Name: "Failed", Align: text.AlignRight},
		table.ColumnConfig{Name: "Outcome", Transformer: func(val any) string {
			outcome, _ := val.(history.Outcome)
			return formatOutcome(outcome, color)
		}},
		table.ColumnConfig{Name: "Duration", Align: text.AlignRight},
	)
	for _, run := range runs {
		devices := strconv.Itoa(run.DeviceCount)
		if run.Placeholder {
			devices += "*"
		}
		tw.AppendRow(table.Row{
			shortID(run.ID),
			formatTimestamp(run.StartedAt),
			run.Organization,
			run.NetworkID,
			devices,
			run.Succeeded,
			run.Failed,
			run.Outcome,
			formatDuration(run),
		})
	}
	return tw.Render()
}

func renderResultTable(results []history.Result, color bool) string {
	tw := newHistoryTable(
		table.Row{"#", "Serial", "Model", "Status", "Requested", "Error"},
		table.ColumnConfig{Name: "#", Align: text.AlignRight},
		table.ColumnConfig{Name: "Status", Align: text.AlignRight, Transformer: func(val any) string {
			code, _ := val.(int)
			if !color {
				return formatStatus(code)
			}
			return statusColors(code).Sprint(formatStatus(code))
		}},
	)
	for _, result := range results {
		tw.AppendRow(table.Row{
			result.Position + 1,
			result.Serial,
			valueOrDash(result.Model),
			result.StatusCode,
			formatTimestamp(result.RequestedAt),
			result.Error,
		})
	}
	return tw.Render()
}

func formatOutcome(outcome history.Outcome, color bool) string {
	if !color {
		return string(outcome)
	}
	return outcomeColors(outcome).Sprint(outcome)
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
