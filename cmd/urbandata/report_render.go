package main

import (
	"time"

	"github.com/dustin/go-humanize"

	"urbandata/internal/clean"
	"urbandata/internal/fetch"
	"urbandata/internal/pipeline"
)

func renderReport(report pipeline.Report) string {
	headers := []string{"Dataset", "Stage", "Status", "Rows", "Size", "Detail"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
	rows := make([][]string, 0, len(report.Fetch)+len(report.Clean))
	for _, res := range report.Fetch {
		rows = append(rows, fetchRow(res))
	}
	for _, res := range report.Clean {
		rows = append(rows, cleanRow(res))
	}
	return renderTable(headers, rows, aligns)
}

func fetchRow(res fetch.Result) []string {
	row := []string{res.Dataset, pipeline.StageFetch, string(res.Status), "", "", ""}
	switch res.Status {
	case fetch.StatusFetched:
		row[3] = humanize.Comma(int64(res.Rows))
		row[4] = humanize.IBytes(uint64(res.Bytes))
		row[5] = res.Encoding
	case fetch.StatusSkipped:
		row[5] = "raw file present"
	default:
		row[5] = errorDetail(res.Err)
	}
	return row
}

func cleanRow(res clean.Result) []string {
	if res.Err != nil {
		return []string{res.Dataset, pipeline.StageClean, "failed", "", "", errorDetail(res.Err)}
	}
	detail := ""
	if dropped := res.Stats.Rejected + res.Stats.Duplicates; dropped > 0 {
		detail = humanize.Comma(int64(dropped)) + " dropped"
	}
	return []string{
		res.Dataset,
		pipeline.StageClean,
		"cleaned",
		humanize.Comma(int64(res.Stats.Written)),
		"",
		detail,
	}
}

func errorDetail(err error) string {
	if err == nil {
		return ""
	}
	return truncate(err.Error(), 60)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func durationRounding(report pipeline.Report) time.Duration {
	if report.Duration() < time.Second {
		return time.Millisecond
	}
	return 100 * time.Millisecond
}
