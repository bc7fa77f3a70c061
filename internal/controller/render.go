package controller

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"

	m "amalgam.dev/pkg/amalgam/internal/model"
)

func renderFileTable(report m.PassReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Lines", "Banner", "Includes", "Guards", "Written"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT,
	})

	var read, banner, includes, written int

	for _, file := range report.Files {
		table.Append([]string{
			string(file.Path),
			strconv.Itoa(file.LinesRead),
			strconv.Itoa(file.BannerLines),
			strconv.Itoa(file.LocalIncludes),
			guardSummary(file),
			strconv.Itoa(file.LinesWritten),
		})

		read += file.LinesRead
		banner += file.BannerLines
		includes += file.LocalIncludes
		written += file.LinesWritten
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(report.Files)),
		strconv.Itoa(read),
		strconv.Itoa(banner),
		strconv.Itoa(includes),
		"",
		strconv.Itoa(written),
	})

	table.Render()

	return tableBuffer.String()
}

// guardSummary is "kept", "replaced", "dropped" or "-" for a file without a guard.
func guardSummary(file m.FileStats) string {
	switch {
	case file.GuardsKept > 0:
		return "kept"
	case file.GuardsReplaced > 0:
		return "replaced"
	case file.GuardsDropped > 0:
		return "dropped"
	default:
		return "-"
	}
}

func passTitle(report m.PassReport) string {
	return fmt.Sprintf("%s -> %s", report.Kind, report.Output)
}

func buildSummary(report m.PassReport) string {
	return fmt.Sprintf("wrote %s (%s pass, %d files, %d bytes)",
		report.Output, report.Kind, len(report.Files), report.Bytes)
}

func checkSummary(result m.CheckResult) string {
	return fmt.Sprintf("%s: %s", result.Output, result.Status)
}
