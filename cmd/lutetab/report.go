package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/pdiddy/lutetab/internal/ledger"
	"github.com/pdiddy/lutetab/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Show recorded conversion runs",
	Long: `Report lists the most recent conversion runs from the ledger in the
output directory. Given a run id, it lists every target conversion of that
run instead, including the error of each failure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().Int("limit", 10, "number of runs to list")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := conversionConfig()
	if _, err := os.Stat(cfg.LedgerPath); err != nil {
		return fmt.Errorf("no ledger at %s: run convert first", cfg.LedgerPath)
	}
	store, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		recs, err := store.Conversions(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, renderConversions(recs))
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, renderRuns(runs))
	return nil
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderRuns(runs []types.Run) string {
	headers := []string{"Run", "Started", "Duration", "Converted", "Copied", "Skipped", "Unchanged", "Failed"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "running"
		if !r.FinishedAt.IsZero() {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
			strconv.Itoa(r.Converted),
			strconv.Itoa(r.Copied),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Unchanged),
			strconv.Itoa(r.Failed),
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
	return renderTable(headers, rows, aligns)
}

func renderConversions(recs []types.ConversionRecord) string {
	headers := []string{"Source", "Target", "Status", "Output / Error"}
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		detail := r.OutputPath
		if r.Status == types.StatusFailed {
			detail = fmt.Sprintf("%s: %s", r.ErrorClass, r.Error)
		}
		rows = append(rows, []string{r.SourcePath, r.Target, string(r.Status), detail})
	}
	return renderTable(headers, rows, nil)
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
