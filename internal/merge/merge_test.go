package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

func record() domain.FilmRecord {
	return domain.NewFilmRecord(domain.Expectation{
		Studio:      "StudioX",
		Title:       "Best Night Ever",
		Year:        2020,
		Duration:    90,
		Collections: []string{"Best Night Ever", "StudioX"},
	})
}

func TestMerge_CollectionsDedupKeepsFirstCasing(t *testing.T) {
	rec := domain.NewFilmRecord(domain.Expectation{Title: "Best Night Ever", Collections: []string{"Best Night Ever"}})
	site := domain.SiteFields{Collections: []string{"best night ever", "Director Series"}}
	p := domain.DefaultPrefs()
	p.StudioToCollection = false

	got := Merge(rec, site, nil, p)

	assert.Equal(t, []string{"Best Night Ever", "Director Series"}, got.Collections)
}

func TestMerge_Idempotent(t *testing.T) {
	site := domain.SiteFields{
		ReleaseDate: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
		Duration:    95,
		Synopsis:    "Short.",
		Genres:      []string{"bareback", "Muscle", "muscle"},
		Countries:   []string{"USA"},
		Collections: []string{"director series"},
		Posters:     []string{"p1.jpg", "p1.jpg"},
		Art:         []string{"a1.jpg"},
		Rating:      7.5,
	}
	reg := &domain.RegistryMatch{Synopsis: "A much longer registry synopsis.", Duration: 96}
	p := domain.DefaultPrefs()
	p.GenreToCollection = true
	p.CastToCollection = true

	rec := record()
	rec.Cast = []domain.Credit{{Name: "John Doe", Status: domain.CreditVerified}}

	once := Merge(rec, site, reg, p)
	twice := Merge(once, site, reg, p)

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"Bareback", "Muscle"}, once.Genres)
	assert.Equal(t, []string{"USA"}, once.Countries)
	assert.Equal(t, []string{"Best Night Ever", "StudioX", "director series", "Bareback", "Muscle", "John Doe"}, once.Collections)
	assert.Equal(t, []string{"p1.jpg"}, once.Posters)
	assert.Equal(t, 95, once.Duration)
	assert.Equal(t, "A much longer registry synopsis.", once.Synopsis)
	assert.Equal(t, site.ReleaseDate, once.CompareDate)
	assert.Equal(t, "StudioX", once.Expect.Studio, "厂牌永远来自文件名")
}

func TestMerge_KeepsDateResolvedDuringSearch(t *testing.T) {
	rec := record()
	rec.CompareDate = time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	rec.DateResolved = true

	got := Merge(rec, domain.SiteFields{ReleaseDate: time.Date(2014, 7, 9, 0, 0, 0, 0, time.UTC)}, nil, domain.DefaultPrefs())
	assert.Equal(t, rec.CompareDate, got.CompareDate, "详情页日期不能覆盖 search 确定的日期")
}

func TestMerge_SiteDateReplacesYearFallbackOnlyWhenYearAgrees(t *testing.T) {
	rec := record()

	got := Merge(rec, domain.SiteFields{ReleaseDate: time.Date(2014, 7, 9, 0, 0, 0, 0, time.UTC)}, nil, domain.DefaultPrefs())
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), got.CompareDate)
	assert.False(t, got.DateResolved)

	got = Merge(rec, domain.SiteFields{ReleaseDate: time.Date(2020, 5, 4, 0, 0, 0, 0, time.UTC)}, nil, domain.DefaultPrefs())
	assert.Equal(t, time.Date(2020, 5, 4, 0, 0, 0, 0, time.UTC), got.CompareDate)
	assert.True(t, got.DateResolved)
}

func TestMerge_ClearCollectionsDropsExisting(t *testing.T) {
	rec := record()
	rec.Collections = append(rec.Collections, "Stale Tag")
	p := domain.DefaultPrefs()
	p.ClearCollectionsOnUpdate = true

	got := Merge(rec, domain.SiteFields{Collections: []string{"Fresh"}}, nil, p)
	assert.Equal(t, []string{"Best Night Ever", "StudioX", "Fresh"}, got.Collections)

	p.ClearCollectionsOnUpdate = false
	got = Merge(rec, domain.SiteFields{}, nil, p)
	assert.Contains(t, got.Collections, "Stale Tag")
}

func TestMerge_DisabledSourcesNeverAdded(t *testing.T) {
	rec := record()
	rec.Directors = []domain.Credit{{Name: "Dan Director"}}
	p := domain.DefaultPrefs()

	got := Merge(rec, domain.SiteFields{Genres: []string{"Drama"}, Countries: []string{"France"}}, nil, p)
	assert.NotContains(t, got.Collections, "Drama")
	assert.NotContains(t, got.Collections, "France")
	assert.NotContains(t, got.Collections, "Dan Director")

	p.DirectorToCollection = true
	p.CountryToCollection = true
	got = Merge(rec, domain.SiteFields{Countries: []string{"France"}}, nil, p)
	assert.Contains(t, got.Collections, "France")
	assert.Contains(t, got.Collections, "Dan Director")
}

func TestMerge_FallbacksWithoutSite(t *testing.T) {
	rec := record()
	got := Merge(rec, domain.SiteFields{}, &domain.RegistryMatch{Duration: 88, Synopsis: "From registry."}, domain.DefaultPrefs())

	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), got.CompareDate)
	assert.Equal(t, 88, got.Duration)
	assert.Equal(t, "From registry.", got.Synopsis)
	require.NotNil(t, got.Registry)

	got = Merge(rec, domain.SiteFields{}, nil, domain.DefaultPrefs())
	assert.Equal(t, 90, got.Duration, "最后回退到文件名时长")
}

func TestMerge_SiteSynopsisWinsWhenLonger(t *testing.T) {
	got := Merge(record(), domain.SiteFields{Synopsis: "A long site synopsis."}, &domain.RegistryMatch{Synopsis: "Short."}, domain.DefaultPrefs())
	assert.Equal(t, "A long site synopsis.", got.Synopsis)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "L\nS", Summary("L", "S", domain.LegendPrefix))
	assert.Equal(t, "S\nL", Summary("L", "S", domain.LegendSuffix))
	assert.Equal(t, "L\nline1\nline2", Summary("L", "line1\n\n\nline2", domain.LegendPrefix))
	assert.Equal(t, "S", Summary("", " S ", domain.LegendPrefix))
	assert.Equal(t, "L", Summary("L", "", domain.LegendSuffix))
}
