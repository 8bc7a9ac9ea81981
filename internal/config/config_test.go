package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

func TestLoadEffective_RunRequiresConfig(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{RequirePath: true})
	if Code(err) != ErrCodeNotFound {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeNotFound, err, Code(err))
	}
}

func TestLoadEffective_SearchWithoutConfigUsesDefaults(t *testing.T) {
	cwd := t.TempDir()

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.File != "" {
		t.Fatalf("未读取配置文件时 File 应为空：%q", eff.File)
	}
	if eff.Prefs != domain.DefaultPrefs() {
		t.Fatalf("期望默认偏好，实际 %+v", eff.Prefs)
	}
	if eff.Network.RequestDelay != time.Second || eff.Network.RetryMax != DefaultRetryMax {
		t.Fatalf("网络默认值不正确：%+v", eff.Network)
	}
	if !eff.Registry.Enabled || eff.Registry.BaseURL != DefaultRegistryBaseURL {
		t.Fatalf("registry 默认值不正确：%+v", eff.Registry)
	}
	if len(eff.Sites.Order) != 2 || eff.Sites.Order[0] != "waybig" {
		t.Fatalf("站点顺序默认值不正确：%v", eff.Sites.Order)
	}
	if eff.Media.FFprobe != DefaultFFprobe {
		t.Fatalf("ffprobe 默认值不正确：%q", eff.Media.FFprobe)
	}
}

func TestLoadEffective_MediaFFprobeFromFile(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte("[media]\nffprobe = \"/opt/bin/ffprobe\"\n"))

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Media.FFprobe != "/opt/bin/ffprobe" {
		t.Fatalf("期望 /opt/bin/ffprobe，实际 %q", eff.Media.FFprobe)
	}
}

func TestLoadEffective_ConfigMissingPath(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte("[match]\nmatch_site_duration = true\n"))

	_, err := LoadEffective(cwd, CLIArgs{RequirePath: true})
	if Code(err) != ErrCodeMissingPath {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeMissingPath, err, Code(err))
	}
}

func TestLoadEffective_ApplyCLIOverride(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte("path = \"videos\"\napply = true\n"))

	eff, err := LoadEffective(cwd, CLIArgs{
		RequirePath: true,
		Apply:       false,
		ApplySet:    true, // --apply=false
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Apply != false {
		t.Fatalf("期望 apply=false，实际=%v", eff.Apply)
	}

	wantPath := filepath.Join(cwd, "videos")
	if eff.Path != wantPath {
		t.Fatalf("期望 path=%q，实际=%q", wantPath, eff.Path)
	}
}

func TestLoadEffective_PrefsFromFile(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`
path = "p"

[collections]
cast = true
title = false
clear_on_update = true

[match]
duration_tolerance_minutes = 5
match_site_duration = true
title_similarity = 0.9

[summary]
legend_placement = "suffix"

[network]
request_delay_seconds = 0
retry_max = 4

[sites]
order = ["aventertainments", "WayBig", "waybig"]

[cache]
dir = "cache"
ttl_hours = 1

[log]
level = "warn"
format = "json"
`))

	eff, err := LoadEffective(cwd, CLIArgs{LogLevel: "debug"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	p := eff.Prefs
	if !p.CastToCollection || p.TitleToCollection || !p.ClearCollectionsOnUpdate || !p.StudioToCollection {
		t.Fatalf("collections 偏好不正确：%+v", p)
	}
	if p.DurationToleranceMinutes != 5 || !p.MatchAgainstSiteDuration || p.MatchAgainstRegistryDuration {
		t.Fatalf("match 偏好不正确：%+v", p)
	}
	if p.TitleSimilarity != 0.9 || p.NameSimilarity != domain.DefaultNameSimilarity {
		t.Fatalf("相似度阈值不正确：%+v", p)
	}
	if p.LegendPlacement != domain.LegendSuffix {
		t.Fatalf("legend_placement 不正确：%q", p.LegendPlacement)
	}
	if eff.Network.RequestDelay != 0 || eff.Network.RetryMax != 4 {
		t.Fatalf("network 不正确：%+v", eff.Network)
	}
	if len(eff.Sites.Order) != 2 || eff.Sites.Order[0] != "aventertainments" || eff.Sites.Order[1] != "waybig" {
		t.Fatalf("sites.order 应规范化并去重：%v", eff.Sites.Order)
	}
	if eff.Cache.Dir != filepath.Join(cwd, "cache") || eff.Cache.TTL != time.Hour {
		t.Fatalf("cache 不正确：%+v", eff.Cache)
	}
	if eff.Log.Level != "debug" || eff.Log.Format != "json" {
		t.Fatalf("log 不正确（CLI 应覆盖 level）：%+v", eff.Log)
	}
}

func TestLoadEffective_CLIPath_ConfigOptional(t *testing.T) {
	cwd := t.TempDir()
	root := filepath.Join(cwd, "root")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	eff, err := LoadEffective(cwd, CLIArgs{Path: root, RequirePath: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != root {
		t.Fatalf("期望 path=%q，实际=%q", root, eff.Path)
	}
}

func TestLoadEffective_CLIPathFile_ReadsSiblingConfig(t *testing.T) {
	cwd := t.TempDir()
	video := filepath.Join(cwd, "Studio - Title (2020).mp4")
	writeFile(t, video, nil)
	writeFile(t, filepath.Join(cwd, FileName), []byte("[summary]\nlegend_placement = \"suffix\"\n"))

	eff, err := LoadEffective(t.TempDir(), CLIArgs{Path: video})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != video || eff.Prefs.LegendPlacement != domain.LegendSuffix {
		t.Fatalf("应读取视频所在目录的配置：%+v", eff)
	}
}

func TestLoadEffective_Invalid(t *testing.T) {
	cases := map[string]string{
		"语法错误":        `path = `,
		"阈值越界":        "[match]\ntitle_similarity = 1.5\n",
		"容差为负":        "[match]\nduration_tolerance_minutes = -1\n",
		"legend 非法":   "[summary]\nlegend_placement = \"middle\"\n",
		"代理 URL 非法":   "[network]\nproxy_url = \"http://[::1\"\n",
		"未知站点":        "[sites]\norder = [\"nosuchsite\"]\n",
		"base_url 非法": "[registry]\nbase_url = \"ftp://iafd\"\n",
		"日志级别非法":      "[log]\nlevel = \"trace\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cwd := t.TempDir()
			writeFile(t, filepath.Join(cwd, FileName), []byte(body))

			_, err := LoadEffective(cwd, CLIArgs{})
			if Code(err) != ErrCodeInvalid {
				t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
			}
		})
	}
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("写入文件失败 %q：%v", path, err)
	}
}
