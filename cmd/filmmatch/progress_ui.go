package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/filmmatch/internal/app/run"
	"github.com/John-Robertt/filmmatch/internal/config"
	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/scan"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 把 run 的事件渲染成交互终端的进度行。
//
// 所有输出写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出。
// 单个文件可能要访问多个站点与 IAFD，长时间无输出时 ticker 会打印 keepalive。
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	total   int
	done    int
	ok      int
	fail    int
	skip    int
	miss    int
	current string

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	mode := "dry-run"
	modeHint := " (不写入 NFO/报告)"
	if eff.Apply {
		mode = "apply"
		modeHint = ""
	}

	fmt.Fprintf(p.w, "[%s] filmmatch run (%s)\n", now.Format("15:04:05"), mode)
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	fmt.Fprintf(p.w, "  mode: %s%s\n", mode, modeHint)
	fmt.Fprintf(p.w, "  sites: %s\n", strings.Join(eff.Sites.Order, " -> "))
	fmt.Fprintf(p.w, "  registry: %s\n", onOff(eff.Registry.Enabled))
	fmt.Fprintf(p.w, "  proxy: %s\n", formatProxy(eff.Network.ProxyURL))
	if eff.Cache.Dir != "" {
		fmt.Fprintf(p.w, "  cache: %s\n", eff.Cache.Dir)
	} else {
		fmt.Fprintln(p.w, "  cache: off")
	}
	fmt.Fprintf(p.w, "  exclude_dirs: %s + 固定排除 %s/\n", formatStringListJSON(eff.ExcludeDirs), scan.StateDir)
	if eff.Apply {
		fmt.Fprintf(p.w, "  report: %s\n", filepath.Join(eff.Path, scan.StateDir, run.ReportName))
	}
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		p.total = intField(fields, "files")
		fmt.Fprintf(p.w, "扫描: files=%d with_nfo=%d (%s)\n\n",
			p.total, intField(fields, "with_nfo"), formatShortDuration(dur),
		)
		if p.total > 0 && !p.tickerStarted {
			p.startTickerLocked()
		}
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnItemStart(idx, total int, file string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.current = file
}

func (p *progressUI) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total
	p.current = ""

	switch res.Status {
	case domain.StatusProcessed:
		p.ok++
	case domain.StatusFailed:
		p.fail++
	case domain.StatusSkipped:
		p.skip++
	case domain.StatusUnmatched:
		p.miss++
	}

	fmt.Fprintln(p.w, formatItemLine(idx, total, res, dur))
	p.lastPrinted = time.Now()

	// 最后一条完成后停止 ticker，避免结束打印后又冒出 keepalive。
	if p.tickerStarted && p.done >= p.total {
		p.stopLocked()
	}
}

// Stop 停止 keepalive ticker；可重复调用。
func (p *progressUI) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tickerStarted {
		p.stopLocked()
	}
}

func (p *progressUI) stopLocked() {
	close(p.stopCh)
	p.tickerStarted = false
}

func formatItemLine(idx, total int, res domain.ItemResult, dur time.Duration) string {
	status := statusLabel(res.Status)
	switch res.Status {
	case domain.StatusFailed, domain.StatusUnmatched:
		return fmt.Sprintf("[%d/%d] %s %s %s: %s (%s)",
			idx, total, res.File, status, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
		)
	case domain.StatusSkipped:
		return fmt.Sprintf("[%d/%d] %s %s (已有 NFO) (%s)", idx, total, res.File, status, formatShortDuration(dur))
	default:
		enriched := ""
		if !res.Enriched {
			enriched = " registry=off"
		}
		return fmt.Sprintf("[%d/%d] %s %s site=%s title=%q%s (%s)",
			idx, total, res.File, status, res.Site, truncate(res.Title, 80), enriched, formatShortDuration(dur),
		)
	}
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true
	stop := p.stopCh

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && p.done >= p.total {
					p.mu.Unlock()
					return
				}
				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					fmt.Fprintln(p.w, p.keepaliveLineLocked(time.Since(p.startedAt)))
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func (p *progressUI) keepaliveLineLocked(elapsed time.Duration) string {
	line := fmt.Sprintf("进度: done=%d/%d ok=%d fail=%d skip=%d unmatched=%d elapsed=%s",
		p.done, p.total, p.ok, p.fail, p.skip, p.miss, formatElapsed(elapsed),
	)
	if p.current != "" {
		line += " current=" + truncate(p.current, 80)
	}
	return line
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func formatStringListJSON(xs []string) string {
	// nil 切片会编码成 null
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}

func intField(fields map[string]any, key string) int {
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	case uint:
		return int(x)
	default:
		return 0
	}
}
