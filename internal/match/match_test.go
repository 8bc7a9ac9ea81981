package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/filename"
)

func mustParse(t *testing.T, name string, duration int) domain.Expectation {
	t.Helper()
	exp, err := filename.Parse(name, filename.Options{Duration: duration})
	require.NoError(t, err)
	return exp
}

func TestCandidate_StudioContainmentTitleEqualityYear(t *testing.T) {
	exp := mustParse(t, "StudioX - Best Night Ever (2020) [John Doe, Jane Roe].mp4", 0)
	require.Equal(t, "StudioX", exp.Studio)
	require.Equal(t, "Best Night Ever", exp.Title)
	require.Equal(t, 2020, exp.Year)
	require.Equal(t, []string{"John Doe", "Jane Roe"}, exp.Cast)

	cand := domain.Candidate{
		Studio: "Studio X Productions",
		Title:  "Best Night Ever",
		Dates:  []string{"2020-03-01"},
	}
	v := Candidate(exp, cand, domain.DefaultPrefs())
	require.True(t, v.Accepted(), "rejection: %s", v.Rejection)
	assert.Equal(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), v.Date)
	assert.Len(t, v.Results, 3)
}

func TestCandidate_ShortCircuitsOnFirstRejection(t *testing.T) {
	exp := mustParse(t, "StudioX - Best Night Ever (2020).mp4", 0)
	v := Candidate(exp, domain.Candidate{Title: "Completely Different Film", Studio: "StudioX"}, domain.DefaultPrefs())
	require.False(t, v.Accepted())
	assert.Equal(t, "title", v.Rejection.Field)
	assert.Len(t, v.Results, 1)
}

func TestCandidate_SiteDurationOnlyWhenEnabled(t *testing.T) {
	exp := mustParse(t, "S - T (2020).mp4", 90)
	cand := domain.Candidate{Title: "T", Studio: "S", Dates: []string{"2020"}, Duration: 120}

	p := domain.DefaultPrefs()
	assert.True(t, Candidate(exp, cand, p).Accepted())

	p.MatchAgainstSiteDuration = true
	v := Candidate(exp, cand, p)
	require.False(t, v.Accepted())
	assert.Equal(t, "duration:site", v.Rejection.Field)
}

func TestTitle(t *testing.T) {
	exp := mustParse(t, "StudioX - Best Night Ever (2020).mp4", 0)
	cases := []struct {
		name   string
		cand   domain.Candidate
		accept bool
	}{
		{"equal", domain.Candidate{Title: "Best Night Ever"}, true},
		{"article and punctuation", domain.Candidate{Title: "The Best Night Ever!"}, true},
		{"typo", domain.Candidate{Title: "Best Night Evr"}, true},
		{"site appends subtitle", domain.Candidate{Title: "Best Night Ever: Director's Cut"}, true},
		{"studio prefix", domain.Candidate{Title: "StudioX Best Night Ever"}, true},
		{"spaced studio prefix", domain.Candidate{Title: "Studio X: Best Night Ever", Studio: "Studio X"}, true},
		{"candidate is a trailing word", domain.Candidate{Title: "Ever"}, true},
		{"partial word", domain.Candidate{Title: "Best Night Eve"}, true},
		{"word inside another word", domain.Candidate{Title: "Nights"}, false},
		{"different", domain.Candidate{Title: "Worst Day Ever"}, false},
		{"empty", domain.Candidate{Title: "  "}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Title(exp, tc.cand, domain.DefaultTitleSimilarity)
			assert.Equal(t, tc.accept, r.Accepted(), "result: %s", r)
		})
	}
}

func TestTitle_SingleWordTitleWithSiteSubtitle(t *testing.T) {
	cases := []struct{ file, cand string }{
		{"StudioX - Hung (2020).mp4", "Hung Country Boys"},
		{"StudioX - Roommates (2020).mp4", "Roommates Gone Wild Tonight"},
	}
	for _, tc := range cases {
		exp := mustParse(t, tc.file, 0)
		r := Title(exp, domain.Candidate{Title: tc.cand}, domain.DefaultTitleSimilarity)
		assert.True(t, r.Accepted(), "%q vs %q: %s", exp.Title, tc.cand, r)
	}
}

func TestTitle_SeriesAware(t *testing.T) {
	exp := mustParse(t, "Raging Stallion - Hard Days 3 - The Return (2019).mp4", 0)
	r := Title(exp, domain.Candidate{Title: "The Return"}, domain.DefaultTitleSimilarity)
	assert.True(t, r.Accepted(), "result: %s", r)
}

func TestTitle_InvalidThresholdIsError(t *testing.T) {
	r := Title(domain.Expectation{CompareTitle: "x"}, domain.Candidate{Title: "x"}, 0)
	assert.Equal(t, Errored, r.Outcome)
	assert.Error(t, r.Err)
}

func TestStudio(t *testing.T) {
	cases := []struct {
		want, got string
		accept    bool
	}{
		{"StudioX", "Studio X Productions", true},
		{"XStudio Productions", "XStudio", true},
		{"Raging Stallion", "RagingStallion.com", true},
		{"Men.com", "Men", true},
		{"Bel Ami", "BelAmiOnline", true},
		{"Falcon", "Raging Stallion", false},
		{"Falcon", "", false},
		{"", "Anything", true},
	}
	for _, tc := range cases {
		t.Run(tc.want+"|"+tc.got, func(t *testing.T) {
			r := Studio(domain.Expectation{Studio: tc.want}, tc.got)
			assert.Equal(t, tc.accept, r.Accepted(), "result: %s", r)
		})
	}
}

func TestAnyStudio(t *testing.T) {
	exp := domain.Expectation{Studio: "Falcon"}
	assert.True(t, AnyStudio(exp, []string{"Raging Stallion", "Falcon Studios"}).Accepted())
	assert.False(t, AnyStudio(exp, []string{"Raging Stallion"}).Accepted())
	assert.False(t, AnyStudio(exp, nil).Accepted())
}

func TestDate_NoYearAlwaysAccepts(t *testing.T) {
	exp := domain.Expectation{Title: "T"}
	for _, dates := range [][]string{nil, {"1999-01-01"}, {"garbage"}, {"March 3, 2031"}} {
		r := Date(exp, domain.Candidate{Dates: dates})
		assert.True(t, r.Accepted(), "dates=%v", dates)
	}
}

func TestDate(t *testing.T) {
	exp := domain.Expectation{Year: 2020}

	r := Date(exp, domain.Candidate{Dates: []string{"March 1, 2020"}})
	require.True(t, r.Accepted())
	assert.Equal(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), r.Date)

	r = Date(exp, domain.Candidate{Dates: []string{"03/01/2020"}, DateLayouts: []string{"01/02/2006"}})
	require.True(t, r.Accepted())
	assert.Equal(t, time.March, r.Date.Month())

	r = Date(exp, domain.Candidate{Dates: []string{"c. 2020", "2019-05-05", "2020-07-04"}})
	require.True(t, r.Accepted())
	assert.Equal(t, time.Date(2020, 7, 4, 0, 0, 0, 0, time.UTC), r.Date, "优先完整日期")

	r = Date(exp, domain.Candidate{Dates: []string{"Jan 2020"}})
	require.True(t, r.Accepted())
	assert.Equal(t, 2020, r.Date.Year())

	r = Date(exp, domain.Candidate{Dates: []string{"2021-01-01"}})
	assert.False(t, r.Accepted())

	r = Date(exp, domain.Candidate{})
	assert.True(t, r.Accepted())
	assert.True(t, r.Date.IsZero())
}

func TestDuration_Boundary(t *testing.T) {
	exp := domain.Expectation{Duration: 90}

	assert.True(t, Duration(exp, 95, 10, "site").Accepted())
	assert.False(t, Duration(exp, 95, 3, "site").Accepted())

	assert.True(t, Duration(exp, 93, 3, "site").Accepted(), "恰好等于容差应接受")
	assert.False(t, Duration(exp, 94, 3, "site").Accepted(), "容差+1 应拒绝")
	assert.True(t, Duration(exp, 87, 3, "site").Accepted())
	assert.False(t, Duration(exp, 86, 3, "site").Accepted())

	assert.False(t, Duration(exp, 0, 3, "site").Accepted())
	assert.True(t, Duration(domain.Expectation{}, 200, 0, "site").Accepted(), "没有文件时长应跳过")
	assert.Equal(t, Errored, Duration(exp, 90, -1, "site").Outcome)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("abc", "abc"))
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 0.75, Similarity("abcd", "abce"), 1e-9)
}
