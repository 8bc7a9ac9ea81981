package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestRunReport_Finalize_SortAndSummaryAndUTC(t *testing.T) {
	r := RunReport{
		Path:       "/abs/path",
		DryRun:     true,
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Items: []ItemResult{
			{File: "b/Studio - B.mp4", Status: StatusSkipped},
			{File: "", Status: StatusFailed},
			{File: "a/Studio - A.mp4", Status: StatusProcessed},
			{File: "c/C.mkv", Status: StatusUnmatched},
		},
	}

	r.Finalize()

	got := []string{r.Items[0].File, r.Items[1].File, r.Items[2].File, r.Items[3].File}
	if got[0] != "a/Studio - A.mp4" || got[1] != "b/Studio - B.mp4" || got[2] != "c/C.mkv" || got[3] != "" {
		t.Fatalf("items 排序不符合契约：%v", got)
	}
	if r.Summary.Processed != 1 || r.Summary.Skipped != 1 || r.Summary.Failed != 1 || r.Summary.Unmatched != 1 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestEncodeDecodeID_PreservesRecord(t *testing.T) {
	exp := Expectation{
		Path:         "/v/StudioX - Best Night Ever (2020).mp4",
		Studio:       "StudioX",
		Title:        "Best Night Ever",
		SearchTitle:  "Best Night Ever",
		CompareTitle: "best night ever",
		Year:         2020,
		Cast:         []string{"John Doe"},
		Collections:  []string{"Best Night Ever"},
	}
	r := NewFilmRecord(exp)
	r.SiteURL = "https://site.test/best-night-ever"
	r.Cast = []Credit{{Name: "John Doe", Photo: "p.jpg", Role: "Top", Status: CreditVerified}}

	id, err := EncodeID(r)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if bytes.ContainsAny([]byte(id), "+/= ") {
		t.Fatalf("id 必须是 URL 安全字符：%q", id)
	}

	back, err := DecodeID(id)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if back.SiteURL != r.SiteURL || back.Expect.Year != 2020 || !back.CompareDate.Equal(r.CompareDate) {
		t.Fatalf("往返后字段不一致：%+v", back)
	}
	if len(back.Cast) != 1 || back.Cast[0].Role != "Top" {
		t.Fatalf("cast 往返失败：%+v", back.Cast)
	}
}

func TestDecodeID_RejectsGarbage(t *testing.T) {
	if _, err := DecodeID(""); err == nil {
		t.Fatalf("期望空 id 报错")
	}
	if _, err := DecodeID("!!!"); err == nil {
		t.Fatalf("期望非法 base64 报错")
	}
}

func TestNewFilmRecord_CompareDateFallsBackToYear(t *testing.T) {
	r := NewFilmRecord(Expectation{Title: "T", Year: 2019})
	if r.CompareDate.Year() != 2019 || r.CompareDate.Month() != time.January || r.CompareDate.Day() != 1 {
		t.Fatalf("compare_date 回退不正确：%v", r.CompareDate)
	}
	r = NewFilmRecord(Expectation{Title: "T"})
	if !r.CompareDate.IsZero() {
		t.Fatalf("无年份时 compare_date 应为零值：%v", r.CompareDate)
	}
}
