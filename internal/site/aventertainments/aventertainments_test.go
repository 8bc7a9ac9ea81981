package aventertainments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/infra/httpx"
)

const searchPage = `<html><body>
<div class="single-slider-product__content  single-slider-product--list-view__content">
  <div>
    <p class="product-title"><a href="/product_lists.aspx?product_id=101">Best Night Ever (DVD)</a></p>
    <div><span class="availability-title">Date:</span> <span class="availability-title">03/01/2020</span></div>
  </div>
</div>
<div class="single-slider-product__content  single-slider-product--list-view__content">
  <div><p class="product-title"><a href="">No Link</a></p></div>
</div>
<ul class="pagination"><li><a title="Next" href="/search_products.aspx?CountPage=2">Next</a></li></ul>
</body></html>`

const detailPage = `<html><body>
<div class="section-title"><h3>Best Night Ever (DVD)</h3></div>
<div class="single-info"><span class="title">Studio</span><span class="value"><a href="/studio/1">Studio X Productions</a></span></div>
<div class="single-info"><span class="title">Category</span><span class="value">
  <a href="#">Gay - Muscle / Bareback</a><a href="#">Gay</a><a href="#">New Release</a><a href="#">Compilation</a><a href="#">Muscle</a>
</span></div>
<div class="single-info"><span class="title">Series</span><span class="value"><a href="#">Director Series</a></span></div>
<div class="single-info"><span class="title">Director</span><span class="value"><a href="#">N/A</a><a href="#">Dan Director</a></span></div>
<div class="single-info"><span class="title">Starring</span><span class="value"><a href="#">John Doe</a><a href="#">Jane Roe</a></span></div>
<div class="single-info"><span class="title">Release Date</span><span class="value">3/1/2020</span></div>
<div class="single-info"><span class="title">Play Time</span><span class="value">Apx. 95 Min.</span></div>
<a href="https://imgs.aventertainments.com/gay/bigcover/DVD101.jpg">Cover Jacket</a>
<div class="product-description mt-20">
  Two strangers meet.
</div>
</body></html>`

func expectation() domain.Expectation {
	return domain.Expectation{
		Studio:        "StudioX",
		Title:         "Best Night Ever",
		SearchTitle:   "Best Night Ever",
		CompareStudio: "studiox",
		CompareTitle:  "best night ever",
		Year:          2020,
	}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search_products.aspx", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("keyword") != "best night ever" {
			t.Errorf("搜索串不符合预期：%q", r.URL.Query().Get("keyword"))
		}
		_, _ = w.Write([]byte(searchPage))
	})
	mux.HandleFunc("/product_lists.aspx", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(detailPage))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchAndExpand(t *testing.T) {
	srv := newServer(t)
	s := New(&httpx.Fetcher{Client: srv.Client()}, srv.URL)

	cands, more, err := s.Search(context.Background(), expectation(), 1)
	require.NoError(t, err)
	assert.True(t, more)
	require.Len(t, cands, 1)
	c := cands[0]
	assert.Equal(t, "Best Night Ever", c.Title)
	assert.Equal(t, []string{"03/01/2020"}, c.Dates)
	assert.True(t, c.Partial)
	assert.Empty(t, c.Studio)

	full, err := s.Expand(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, full.Partial)
	assert.Equal(t, "Studio X Productions", full.Studio)
	assert.Equal(t, 95, full.Duration)
}

func TestExpand_FillsMissingDateFromDetailPage(t *testing.T) {
	srv := newServer(t)
	s := New(&httpx.Fetcher{Client: srv.Client()}, srv.URL)

	full, err := s.Expand(context.Background(), domain.Candidate{
		Site:    Name,
		URL:     srv.URL + "/product_lists.aspx?product_id=101",
		Title:   "Best Night Ever",
		Partial: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"03/01/2020"}, full.Dates)
	assert.Equal(t, []string{dateLayout}, full.DateLayouts)
}

func TestSearchURL_Pagination(t *testing.T) {
	s := New(nil, "https://ave.test/")
	assert.NotContains(t, s.searchURL(expectation(), 1), "CountPage")
	assert.Contains(t, s.searchURL(expectation(), 3), "&CountPage=3")
}

func TestParse(t *testing.T) {
	f, err := Parse([]byte(detailPage), "https://www.aventertainments.com/product_lists.aspx?product_id=101")
	require.NoError(t, err)

	assert.Equal(t, "Best Night Ever", f.Title)
	assert.Equal(t, "Studio X Productions", f.Studio)
	assert.Equal(t, []string{"Muscle", "Bareback", "Compilation"}, f.Genres)
	assert.True(t, f.Compilation)
	assert.Equal(t, []string{"Director Series"}, f.Collections)
	assert.Equal(t, []string{"Dan Director"}, f.Directors)
	assert.Equal(t, []string{"John Doe", "Jane Roe"}, f.Cast)
	assert.Equal(t, 95, f.Duration)
	assert.Equal(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), f.ReleaseDate)
	assert.Equal(t, []string{"https://imgs.aventertainments.com/gay/jacket_images/DVD101.jpg"}, f.Posters)
	assert.Equal(t, []string{"https://imgs.aventertainments.com/gay/screen_shot/DVD101.jpg"}, f.Art)
	assert.Equal(t, "Two strangers meet.", f.Synopsis)
}

func TestParse_EmptyPageIsError(t *testing.T) {
	_, err := Parse([]byte("<html><body></body></html>"), "https://ave.test/x")
	assert.Error(t, err)
}

func TestQuery(t *testing.T) {
	assert.Equal(t, "cafe nights vol 2", Query("Café Nights: Vol. 2"))
	assert.Equal(t, "don't stop, ever", Query("Don't Stop, Ever!"))
}
