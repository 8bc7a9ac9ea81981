package filename

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

func TestParse_FullConvention(t *testing.T) {
	p := filepath.Join(string(filepath.Separator), "media", "StudioX - Best Night Ever (2020) [John Doe, Jane Roe].mp4")
	exp, err := Parse(p, Options{TitleToCollection: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if exp.Studio != "StudioX" || exp.Title != "Best Night Ever" || exp.Year != 2020 {
		t.Fatalf("字段不正确：%+v", exp)
	}
	if !reflect.DeepEqual(exp.Cast, []string{"John Doe", "Jane Roe"}) {
		t.Fatalf("cast 不正确：%v", exp.Cast)
	}
	if exp.CompareStudio != "studiox" || exp.CompareTitle != "best night ever" {
		t.Fatalf("compare 字段不正确：%q %q", exp.CompareStudio, exp.CompareTitle)
	}
	if exp.SearchTitle != "Best Night Ever" {
		t.Fatalf("search_title 不正确：%q", exp.SearchTitle)
	}
	if !reflect.DeepEqual(exp.Collections, []string{"Best Night Ever"}) {
		t.Fatalf("collections 不正确：%v", exp.Collections)
	}
	if exp.Path != p {
		t.Fatalf("path 不正确：%q", exp.Path)
	}
}

func TestParse_MissingYearAndCast(t *testing.T) {
	exp, err := Parse("/m/Studio - Title Only.mkv", Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if exp.HasYear() {
		t.Fatalf("期望无年份，实际 %d", exp.Year)
	}
	if len(exp.Cast) != 0 {
		t.Fatalf("期望无 cast，实际 %v", exp.Cast)
	}
	if exp.Title != "Title Only" {
		t.Fatalf("title 不正确：%q", exp.Title)
	}
}

func TestParse_TitleOnly(t *testing.T) {
	exp, err := Parse("Best Night Ever (2021).mp4", Options{StudioToCollection: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if exp.Studio != "" || exp.Title != "Best Night Ever" || exp.Year != 2021 {
		t.Fatalf("字段不正确：%+v", exp)
	}
	if len(exp.Collections) != 0 {
		t.Fatalf("studio 为空时不应产生 collection：%v", exp.Collections)
	}
}

func TestParse_SeriesSplitsSearchTitle(t *testing.T) {
	exp, err := Parse("Raging Stallion - Hard Days 3 - The Return (2019).mp4", Options{TitleToCollection: true, StudioToCollection: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if exp.Title != "Hard Days 3 - The Return" {
		t.Fatalf("title 不正确：%q", exp.Title)
	}
	if exp.SearchTitle != "The Return" {
		t.Fatalf("search_title 不正确：%q", exp.SearchTitle)
	}
	want := []domain.SeriesEntry{{Name: "Hard Days", Number: "3"}}
	if !reflect.DeepEqual(exp.Series, want) {
		t.Fatalf("series 不正确：%+v", exp.Series)
	}
	if !reflect.DeepEqual(exp.Collections, []string{"Hard Days", "Raging Stallion"}) {
		t.Fatalf("collections 不正确：%v", exp.Collections)
	}
}

func TestParse_SeriesOnlyKeepsFullSearchTitle(t *testing.T) {
	exp, err := Parse("Studio - Hard Days Vol. 2.mp4", Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if exp.SearchTitle != "Hard Days Vol. 2" {
		t.Fatalf("search_title 不正确：%q", exp.SearchTitle)
	}
	if len(exp.Series) != 1 || exp.Series[0].Name != "Hard Days" || exp.Series[0].Number != "2" {
		t.Fatalf("series 不正确：%+v", exp.Series)
	}
}

func TestParse_CastDedupAndDuration(t *testing.T) {
	exp, err := Parse("S - T [A  B, a b, , C].mp4", Options{Duration: 90})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !reflect.DeepEqual(exp.Cast, []string{"A B", "C"}) {
		t.Fatalf("cast 去重不正确：%v", exp.Cast)
	}
	if exp.Duration != 90 || !exp.HasDuration() {
		t.Fatalf("duration 不正确：%d", exp.Duration)
	}
}

func TestParse_YearLikeNumberIsNotSeries(t *testing.T) {
	exp, err := Parse("S - Summer 2019.mp4", Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if exp.IsSeries() {
		t.Fatalf("四位数字不应视为系列编号：%+v", exp.Series)
	}
}

func TestParse_FailsWithoutTitle(t *testing.T) {
	for _, name := range []string{"(2020) [A, B].mp4", "   .mp4", "[A].mkv", "!!!.mp4"} {
		_, err := Parse(name, Options{})
		var pe *domain.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%q：期望 ParseError，实际 err=%v", name, err)
		}
	}
}

func TestIsVideoExt(t *testing.T) {
	if !IsVideoExt(".MP4") || !IsVideoExt(".mkv") {
		t.Fatalf("期望视频扩展名被识别")
	}
	if IsVideoExt(".nfo") {
		t.Fatalf(".nfo 不是视频")
	}
}
