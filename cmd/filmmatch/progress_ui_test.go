package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/filmmatch/internal/config"
	"github.com/John-Robertt/filmmatch/internal/domain"
)

func TestProgressUI_PrintsConfigAndItems(t *testing.T) {
	var buf bytes.Buffer
	ui := newProgressUI(&buf)
	defer ui.Stop()

	ui.OnStart(config.EffectiveConfig{
		Path:     "/lib",
		Apply:    true,
		Sites:    config.SitesConfig{Order: []string{"waybig", "aventertainments"}},
		Registry: config.RegistryConfig{Enabled: true},
	})
	ui.OnPhaseDone("scan", map[string]any{"files": 2, "with_nfo": 1}, 200*time.Millisecond)
	ui.OnItemStart(1, 2, "a.mp4")
	ui.OnItemDone(1, 2, domain.ItemResult{File: "a.mp4", Status: domain.StatusProcessed, Site: "waybig", Title: "A", Enriched: true}, time.Second)
	ui.OnItemStart(2, 2, "b.mp4")
	ui.OnItemDone(2, 2, domain.ItemResult{File: "b.mp4", Status: domain.StatusUnmatched, ErrorCode: domain.ErrCodeNoMatch, ErrorMsg: "没有匹配"}, time.Second)

	out := buf.String()
	for _, want := range []string{
		"filmmatch run (apply)",
		"sites: waybig -> aventertainments",
		"report: /lib/.filmmatch/report.json",
		"扫描: files=2 with_nfo=1 (0.2s)",
		`[1/2] a.mp4 OK site=waybig title="A" (1.0s)`,
		"[2/2] b.mp4 UNMATCHED no_match: 没有匹配 (1.0s)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("输出缺少 %q：\n%s", want, out)
		}
	}
	if ui.tickerStarted {
		t.Fatalf("最后一条完成后 ticker 应已停止")
	}
}

func TestProgressUI_KeepaliveLine(t *testing.T) {
	ui := newProgressUI(&bytes.Buffer{})
	ui.total, ui.done, ui.ok, ui.fail = 5, 2, 1, 1
	ui.current = "c.mp4"

	got := ui.keepaliveLineLocked(65 * time.Second)
	want := "进度: done=2/5 ok=1 fail=1 skip=0 unmatched=0 elapsed=00:01:05 current=c.mp4"
	if got != want {
		t.Fatalf("期望 %q，实际 %q", want, got)
	}
}

func TestFormatProxy(t *testing.T) {
	cases := map[string]string{
		"":                              "off",
		"http://user:pw@127.0.0.1:7890": "on (http://127.0.0.1:7890, auth=on)",
		"socks5://127.0.0.1:1080":       "on (socks5://127.0.0.1:1080, auth=off)",
	}
	for in, want := range cases {
		if got := formatProxy(in); got != want {
			t.Fatalf("formatProxy(%q) = %q，期望 %q", in, got, want)
		}
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	if got := truncate("名字很长很长的影片", 6); got != "名字很..." {
		t.Fatalf("实际 %q", got)
	}
	if got := truncate("  short ", 10); got != "short" {
		t.Fatalf("实际 %q", got)
	}
}

func TestDurationSource_OnlyWhenDurationMatchingEnabled(t *testing.T) {
	var eff config.EffectiveConfig
	if durationSource(eff) != nil {
		t.Fatalf("未启用时长比较时不应读取时长")
	}
	eff.Prefs.MatchAgainstSiteDuration = true
	eff.Media.FFprobe = "/opt/ffprobe"
	src := durationSource(eff)
	if src == nil {
		t.Fatalf("启用站点时长比较时应读取时长")
	}
}
