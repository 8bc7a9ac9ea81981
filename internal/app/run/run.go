// Package run 是批量宿主：扫描目录，逐个文件执行 search + update，写 NFO 并汇总报告。
package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/John-Robertt/filmmatch/internal/agent"
	"github.com/John-Robertt/filmmatch/internal/config"
	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/infra/fsx"
	"github.com/John-Robertt/filmmatch/internal/infra/httpx"
	"github.com/John-Robertt/filmmatch/internal/logging"
	"github.com/John-Robertt/filmmatch/internal/nfo"
	"github.com/John-Robertt/filmmatch/internal/scan"
)

// ReportName 是 apply 时写在 <path>/.filmmatch/ 下的报告文件名。
const ReportName = "report.json"

// Engine 是批量运行需要的两个操作（通常是 *agent.Agent）。
type Engine interface {
	Search(ctx context.Context, req agent.Request) (*agent.SearchResult, error)
	Update(ctx context.Context, id, lang string) (domain.Metadata, error)
}

// DurationSource 读取视频时长（分钟）。文件名不带时长，启用时长比较时需要它。
type DurationSource interface {
	DurationMinutes(ctx context.Context, path string) (int, error)
}

type Options struct {
	// Fs 为 nil 时使用真实文件系统。
	Fs       afero.Fs
	Lang     string
	Logger   *slog.Logger
	Observer Observer

	// Durations 为 nil 时不读取时长（时长比较被跳过）。
	Durations DurationSource
}

// Execute 执行一次 run（dry-run/apply），并返回对外稳定的 RunReport。
// 错误尽量降级为条目级失败（单个文件失败不影响其他文件）。
func Execute(ctx context.Context, eff config.EffectiveConfig, eng Engine, opts Options) domain.RunReport {
	fs := opts.Fs
	if fs == nil {
		fs = fsx.OS
	}
	log := logging.NewComponentLogger(logging.Or(opts.Logger), "run")
	obs := opts.Observer

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Path:      eff.Path,
		DryRun:    !eff.Apply,
		StartedAt: time.Now().UTC(),
		Items:     make([]domain.ItemResult, 0, 128),
	}

	scanStarted := time.Now()
	files, err := scan.ScanVideos(fs, eff.Path, eff.ExcludeDirs)
	if err != nil {
		rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeIOFailed, fmt.Sprintf("扫描失败：%v", err)))
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	withNFO := 0
	for _, f := range files {
		if f.HasNFO {
			withNFO++
		}
	}
	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{
			"files":    len(files),
			"with_nfo": withNFO,
		}, time.Since(scanStarted))
	}
	log.Info("扫描完成", logging.Int("files", len(files)), logging.Int("with_nfo", withNFO))

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			rr.Items = append(rr.Items, failedItem(f, domain.ErrCodeFetchFailed, fmt.Sprintf("运行被取消：%v", err)))
			continue
		}
		if obs != nil {
			obs.OnItemStart(i+1, len(files), f.RelPath)
		}
		started := time.Now()
		res := execOne(ctx, eff, eng, fs, f, opts, log)
		rr.Items = append(rr.Items, res)
		if obs != nil {
			obs.OnItemDone(i+1, len(files), res, time.Since(started))
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

func execOne(ctx context.Context, eff config.EffectiveConfig, eng Engine, fs afero.Fs, f domain.VideoFile, opts Options, log *slog.Logger) domain.ItemResult {
	item := domain.ItemResult{File: f.RelPath, Status: domain.StatusProcessed}
	if f.HasNFO {
		item.Status = domain.StatusSkipped
		item.NFO = relNFO(f)
		return item
	}

	lang := opts.Lang
	req := agent.Request{Path: f.AbsPath, Lang: lang}
	if opts.Durations != nil {
		d, err := opts.Durations.DurationMinutes(ctx, f.AbsPath)
		if err != nil {
			log.Warn("读取视频时长失败，跳过时长比较", logging.String("file", f.RelPath), logging.Error(err))
		} else {
			req.Duration = d
		}
	}

	res, err := eng.Search(ctx, req)
	if err != nil {
		fillSearchError(&item, err)
		log.Info("文件未处理", logging.String("file", f.RelPath), logging.String("error_code", item.ErrorCode), logging.Error(err))
		return item
	}
	item.Site = res.Site
	item.SiteURL = res.URL
	item.Enriched = res.Enriched

	meta, err := eng.Update(ctx, res.ID, lang)
	if err != nil {
		item.Status = domain.StatusFailed
		item.ErrorCode = domain.ErrCodeFetchFailed
		item.ErrorMsg = humanizeFetchError(res.Site, err)
		return item
	}
	item.Studio = meta.Studio
	item.Title = meta.Title

	// dry-run：只做 search + update 验证，不落盘。
	if !eff.Apply {
		return item
	}

	b, err := nfo.Encode(meta)
	if err != nil {
		item.Status = domain.StatusFailed
		item.ErrorCode = domain.ErrCodeIOFailed
		item.ErrorMsg = fmt.Sprintf("生成 NFO 失败：%v", err)
		return item
	}
	nfoPath := f.NFOPath()
	if err := fsx.WriteFileAtomicNoOverwrite(fs, filepath.Dir(nfoPath), filepath.Base(nfoPath), b); err != nil && !errors.Is(err, os.ErrExist) {
		item.Status = domain.StatusFailed
		item.ErrorCode = domain.ErrCodeIOFailed
		item.ErrorMsg = fmt.Sprintf("写入 NFO 失败：%v", err)
		return item
	}
	item.NFO = relNFO(f)
	return item
}

func relNFO(f domain.VideoFile) string {
	return strings.TrimSuffix(f.RelPath, filepath.Ext(f.RelPath)) + ".nfo"
}

func fillSearchError(item *domain.ItemResult, err error) {
	var (
		pe *domain.ParseError
		fe *domain.FetchError
	)
	switch {
	case errors.As(err, &pe):
		item.Status = domain.StatusUnmatched
		item.ErrorCode = domain.ErrCodeParseFailed
		item.ErrorMsg = pe.Error() + "；请按 \"Studio - Title (Year) [Cast].ext\" 重命名"
	case errors.Is(err, domain.ErrNoMatch):
		item.Status = domain.StatusUnmatched
		item.ErrorCode = domain.ErrCodeNoMatch
		item.ErrorMsg = err.Error()
	case errors.As(err, &fe):
		item.Status = domain.StatusFailed
		item.ErrorCode = domain.ErrCodeFetchFailed
		item.ErrorMsg = humanizeFetchError(fe.Source, fe)
	default:
		item.Status = domain.StatusFailed
		item.ErrorCode = domain.ErrCodeFetchFailed
		item.ErrorMsg = err.Error()
	}
}

func failedItem(f domain.VideoFile, code, msg string) domain.ItemResult {
	return domain.ItemResult{File: f.RelPath, Status: domain.StatusFailed, ErrorCode: code, ErrorMsg: msg}
}

func syntheticFailed(code, msg string) domain.ItemResult {
	return domain.ItemResult{Status: domain.StatusFailed, ErrorCode: code, ErrorMsg: msg}
}

func humanizeFetchError(source string, err error) string {
	if err == nil {
		return source + " 抓取失败"
	}

	var be *httpx.BlockedError
	if errors.As(err, &be) {
		return fmt.Sprintf("%s 被站点拦截（%s）。建议配置 network.proxy_url 或稍后重试。", source, be.Reason)
	}

	// HTTP 非 2xx：尽量给出可操作提示（限流/站点下线是最常见问题）。
	var hs *httpx.StatusError
	if errors.As(err, &hs) {
		switch hs.StatusCode {
		case 403, 429:
			return fmt.Sprintf("%s 返回 HTTP %d（可能触发限流）。建议增大 network.request_delay_seconds 或配置 network.proxy_url。", source, hs.StatusCode)
		case 404:
			return fmt.Sprintf("%s 返回 HTTP 404（页面可能已下架）。", source)
		default:
			return fmt.Sprintf("%s 返回 HTTP %d。", source, hs.StatusCode)
		}
	}

	var fe *domain.FetchError
	if errors.As(err, &fe) && fe.Stage == "parse" {
		// 解析失败通常意味着站点结构漂移。
		return fmt.Sprintf("%s 解析失败（站点结构可能变化）：%v", source, fe.Err)
	}

	low := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(low, "timeout") {
		return fmt.Sprintf("%s 抓取超时。建议检查网络/代理后重试。", source)
	}
	return fmt.Sprintf("%s 抓取失败：%v", source, err)
}

// WriteReport 把报告原子写入 <root>/.filmmatch/report.json，返回写入路径。
func WriteReport(fs afero.Fs, root string, rr domain.RunReport) (string, error) {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return "", err
	}
	b = append(b, '\n')
	dir := filepath.Join(root, scan.StateDir)
	if err := fsx.WriteFileAtomicReplace(fs, dir, ReportName, b); err != nil {
		return "", err
	}
	return filepath.Join(dir, ReportName), nil
}
