package domain

import (
	"sort"
	"time"
)

const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
	StatusUnmatched = "unmatched"
)

const (
	ErrCodeParseFailed       = "parse_failed"
	ErrCodeNoMatch           = "no_match"
	ErrCodeFetchFailed       = "fetch_failed"
	ErrCodeIOFailed          = "io_failed"
	ErrCodeConfigNotFound    = "config_not_found"
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeConfigMissingPath = "config_missing_path"
)

// RunReport 是批量运行的对外稳定输出（report.json / stdout JSON）。
type RunReport struct {
	Path   string `json:"path"`
	DryRun bool   `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Unmatched int `json:"unmatched"`
}

// ItemResult 对应一个视频文件的处理结果。
type ItemResult struct {
	File string `json:"file"` // 相对扫描根目录

	Site    string `json:"site"`
	SiteURL string `json:"site_url"`
	Studio  string `json:"studio"`
	Title   string `json:"title"`
	NFO     string `json:"nfo"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	// Enriched 表示 registry 增强是否可用。
	Enriched bool `json:"enriched"`
}

// Finalize 统一时间为 UTC，按 file 稳定排序（file=="" 的合成条目排最后），并重新计算 summary。
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a, b := r.Items[i].File, r.Items[j].File
		switch {
		case a == "":
			return false
		case b == "":
			return true
		default:
			return a < b
		}
	})

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusProcessed:
			s.Processed++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		case StatusUnmatched:
			s.Unmatched++
		}
	}
	r.Summary = s
}
