package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// isTTY 只对真实终端返回 true；测试中的 bytes.Buffer 等一律视为非 TTY。
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// pickProgressWriter 只在交互终端启用进度输出，优先 stderr。
func pickProgressWriter(stdout, stderr io.Writer) (io.Writer, bool) {
	if isTTY(stderr) {
		return stderr, true
	}
	if isTTY(stdout) {
		return stdout, true
	}
	return nil, false
}

// emitReport：stdout 是终端时输出表格；否则 stdout 只输出一个 RunReport JSON，摘要走 stderr。
func emitReport(stdout, stderr io.Writer, rr domain.RunReport) {
	if isTTY(stdout) {
		renderReportTable(stdout, rr)
		fmt.Fprintln(stdout, summaryLine(rr))
		return
	}
	_ = json.NewEncoder(stdout).Encode(rr)
	fmt.Fprintln(stderr, summaryLine(rr))
}

func summaryLine(rr domain.RunReport) string {
	return fmt.Sprintf("完成：processed=%d skipped=%d failed=%d unmatched=%d",
		rr.Summary.Processed, rr.Summary.Skipped, rr.Summary.Failed, rr.Summary.Unmatched,
	)
}

func renderReportTable(w io.Writer, rr domain.RunReport) {
	rows := make([][]string, 0, len(rr.Items))
	for _, it := range rr.Items {
		detail := it.Title
		if it.ErrorCode != "" {
			detail = it.ErrorCode + ": " + truncate(it.ErrorMsg, 80)
		}
		file := it.File
		if file == "" {
			file = "<unknown>"
		}
		rows = append(rows, []string{truncate(file, 60), statusLabel(it.Status), it.Site, detail})
	}
	renderTable(w, []string{"File", "Status", "Site", "Detail"}, rows)
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = false

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, c := range r {
			row[i] = c
		}
		tw.AppendRow(row)
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMax: 60},
		{Number: 4, WidthMax: 90},
	})
	tw.Render()
}

func statusLabel(status string) string {
	switch status {
	case domain.StatusProcessed:
		return "OK"
	case domain.StatusSkipped:
		return "SKIP"
	case domain.StatusFailed:
		return "FAIL"
	case domain.StatusUnmatched:
		return "UNMATCHED"
	default:
		return status
	}
}
