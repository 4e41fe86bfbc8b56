package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/bastiangx/nascast/internal/logger"
	"github.com/bastiangx/nascast/internal/utils"
	"github.com/bastiangx/nascast/pkg/catalog"
	"github.com/bastiangx/nascast/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	var buf bytes.Buffer
	r, err := New(utils.Element("div", "search-results"), Options{
		PlaceholderURL: "/static/placeholder.svg",
		Logger:         logger.To(&buf, "render"),
	})
	require.NoError(t, err)
	return r
}

func parse(t *testing.T, r *Renderer) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(r.HTML()))
	require.NoError(t, err)
	return doc
}

func year(y int) *int { return &y }

func TestRender_MovieSection(t *testing.T) {
	r := newRenderer(t)
	r.Render(search.GroupedResult{Movies: []catalog.Entry{{
		Title:     "Interstellar",
		MediaType: catalog.MediaMovie,
		Year:      year(2014),
		URL:       "/movies/interstellar/",
		PosterURL: "/posters/interstellar.jpg",
	}}}, "inter")

	assert.True(t, r.Visible())
	doc := parse(t, r)
	assert.Equal(t, "Movies (1)", doc.Find(".search-section-header").Text())
	require.Equal(t, 1, doc.Find("a.search-result").Length())
	assert.Equal(t, "Interstellar", doc.Find(".search-result-title").Text())
	assert.Equal(t, "Movie (2014)", doc.Find(".search-result-type").Text())

	href, _ := doc.Find("a.search-result").Attr("href")
	assert.Equal(t, "/movies/interstellar/", href)
	src, _ := doc.Find("img.search-result-poster").Attr("src")
	assert.Equal(t, "/posters/interstellar.jpg", src)
}

func TestRender_SectionOrderAndCounts(t *testing.T) {
	r := newRenderer(t)
	r.Render(search.GroupedResult{
		Movies:   []catalog.Entry{{Title: "A", MediaType: catalog.MediaMovie}, {Title: "B", MediaType: catalog.MediaMovie}},
		Series:   []catalog.Entry{{Title: "C", MediaType: catalog.MediaSeries}},
		Episodes: []catalog.Entry{{Title: "D", MediaType: catalog.MediaEpisode}},
	}, "q")

	doc := parse(t, r)
	var headers []string
	doc.Find(".search-section-header").Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, s.Text())
	})
	assert.Equal(t, []string{"Movies (2)", "TV Series (1)", "Episodes (1)"}, headers)

	var titles []string
	doc.Find(".search-section").First().Find(".search-result-title").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Text())
	})
	assert.Equal(t, []string{"A", "B"}, titles)
}

func TestRender_EscapesEntryText(t *testing.T) {
	payload := "<img src=x onerror=alert(1)>"
	r := newRenderer(t)
	r.Render(search.GroupedResult{Movies: []catalog.Entry{{
		Title:     payload,
		MediaType: catalog.MediaMovie,
		URL:       `"><script>alert(1)</script>`,
		PosterURL: `x" onerror="alert(2)`,
	}}}, "img")

	out := r.HTML()
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;img src=x onerror=alert(1)&gt;")

	doc := parse(t, r)
	assert.Equal(t, 0, doc.Find("script").Length())
	// the only image is the poster, and its handler is the fixed fallback
	require.Equal(t, 1, doc.Find("img").Length())
	onerror, _ := doc.Find("img").Attr("onerror")
	assert.Equal(t, posterFallbackHandler, onerror)
	assert.Equal(t, payload, doc.Find(".search-result-title").Text())
}

func TestRender_NeutralizesScriptURLs(t *testing.T) {
	r := newRenderer(t)
	r.Render(search.GroupedResult{Series: []catalog.Entry{{
		Title:     "Evil",
		MediaType: catalog.MediaSeries,
		URL:       "JavaScript:alert(1)",
		PosterURL: "javascript:alert(2)",
	}}}, "evil")

	doc := parse(t, r)
	href, _ := doc.Find("a").Attr("href")
	assert.Equal(t, "#", href)
	src, _ := doc.Find("img").Attr("src")
	assert.Equal(t, "/static/placeholder.svg", src)
}

func TestRender_PosterFallback(t *testing.T) {
	r := newRenderer(t)
	r.Render(search.GroupedResult{Episodes: []catalog.Entry{
		{Title: "With poster", MediaType: catalog.MediaEpisode, PosterURL: "/p.jpg"},
		{Title: "Without poster", MediaType: catalog.MediaEpisode},
	}}, "poster")

	doc := parse(t, r)
	imgs := doc.Find("img.search-result-poster")
	require.Equal(t, 2, imgs.Length())
	imgs.Each(func(_ int, s *goquery.Selection) {
		fallback, ok := s.Attr("data-fallback")
		assert.True(t, ok)
		assert.Equal(t, "/static/placeholder.svg", fallback)
	})
	src, _ := imgs.Eq(1).Attr("src")
	assert.Equal(t, "/static/placeholder.svg", src)
}

func TestRender_EpisodeCapHeaderMatchesItems(t *testing.T) {
	idx := &catalog.Index{}
	var ids []int
	for i := 0; i < 15; i++ {
		idx.Entries = append(idx.Entries, catalog.Entry{Title: fmt.Sprintf("Episode %d", i), MediaType: catalog.MediaEpisode})
		ids = append(ids, i)
	}
	var buf bytes.Buffer
	grouped := search.Group(ids, idx, search.DefaultEpisodeCap, logger.To(&buf, "search"))

	r := newRenderer(t)
	r.Render(grouped, "episode")
	doc := parse(t, r)
	assert.Equal(t, "Episodes (10)", doc.Find(".search-section-header").Text())
	assert.Equal(t, 10, doc.Find("a.search-result").Length())
}

func TestRender_NoResults(t *testing.T) {
	r := newRenderer(t)
	r.Render(search.GroupedResult{}, "<b>batman</b>")

	assert.True(t, r.Visible())
	doc := parse(t, r)
	assert.Equal(t, 0, doc.Find(".search-section").Length())
	assert.Equal(t, "No results for “<b>batman</b>”", doc.Find(".search-no-results").Text())
	assert.Equal(t, 0, doc.Find("b").Length())
}

func TestRender_ReplacesContent(t *testing.T) {
	r := newRenderer(t)
	r.Render(search.GroupedResult{Movies: []catalog.Entry{{Title: "One", MediaType: catalog.MediaMovie}}}, "one")
	r.Render(search.GroupedResult{Series: []catalog.Entry{{Title: "Two", MediaType: catalog.MediaSeries}}}, "two")

	doc := parse(t, r)
	assert.Equal(t, 1, doc.Find(".search-section").Length())
	assert.Equal(t, "Two", doc.Find(".search-result-title").Text())
}

func TestHide_KeepsContent(t *testing.T) {
	r := newRenderer(t)
	r.Render(search.GroupedResult{Movies: []catalog.Entry{{Title: "Heat", MediaType: catalog.MediaMovie}}}, "heat")
	before := r.HTML()

	r.Hide()
	assert.False(t, r.Visible())
	assert.Equal(t, before, r.HTML())

	r.Hide()
	assert.False(t, r.Visible())
}

func TestNew_RequiresContainer(t *testing.T) {
	_, err := New(nil, Options{})
	assert.ErrorIs(t, err, ErrNoContainer)
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		allowData bool
		want      string
	}{
		{"relative path", "/movies/heat/", false, "/movies/heat/"},
		{"https", "https://example.com/a.jpg", true, "https://example.com/a.jpg"},
		{"javascript", "javascript:alert(1)", false, "#"},
		{"mixed case", "JaVaScRiPt:alert(1)", false, "#"},
		{"embedded tab", "java\tscript:alert(1)", false, "#"},
		{"leading space", "  javascript:alert(1)", false, "#"},
		{"vbscript", "vbscript:msgbox", false, "#"},
		{"data html", "data:text/html,<script>", true, "#"},
		{"data image allowed", "data:image/png;base64,AAAA", true, "data:image/png;base64,AAAA"},
		{"data image in link", "data:image/png;base64,AAAA", false, "#"},
		{"colon in path", "/watch?t=10:30", false, "/watch?t=10:30"},
		{"empty", "", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeURL(tt.raw, "#", tt.allowData))
		})
	}
}
