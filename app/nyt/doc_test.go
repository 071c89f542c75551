package nyt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Semior001/nytsearch/app/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultimedia_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		want       []string
		unexpected bool
	}{
		{
			name: "object with default",
			json: `{"caption":"","credit":"","default":{"url":"image/test-image.jpg","width":100,"height":100}}`,
			want: []string{"image/test-image.jpg"},
		},
		{
			name: "object with default and thumbnail",
			json: `{"default":{"url":"a.jpg"},"thumbnail":{"url":"b.jpg"}}`,
			want: []string{"a.jpg", "b.jpg"},
		},
		{name: "array", json: `[{"url":"images/test-image"},{"url":""},{"url":"x.png"}]`, want: []string{"images/test-image", "x.png"}},
		{name: "empty array", json: `[]`, want: []string{}},
		{name: "null", json: `null`, want: []string{}},
		{name: "empty object", json: `{}`, want: []string{}},
		{name: "string", json: `"nope"`, want: []string{}, unexpected: true},
		{name: "array of numbers", json: `[1,2]`, want: []string{}, unexpected: true},
		{name: "object with malformed default", json: `{"default":"x.jpg"}`, want: []string{}, unexpected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc Doc
			err := json.Unmarshal([]byte(`{"multimedia":`+tt.json+`}`), &doc)
			require.NoError(t, err)
			require.NotNil(t, doc.Multimedia.URLs)
			assert.Equal(t, tt.want, doc.Multimedia.URLs)
			assert.Equal(t, tt.unexpected, doc.Multimedia.Unexpected != "")
		})
	}
}

func TestMap(t *testing.T) {
	var resp SearchResponse
	err := json.Unmarshal([]byte(`{"response":{"docs":[
		{
			"_id": "nyt://article/1",
			"headline": {"main": "Test Headline"},
			"web_url": "https://nytimes.com/test-article",
			"multimedia": [{"url": "images/test-image"}],
			"abstract": "blahblahblah",
			"snippet": "ignored",
			"pub_date": "2024-03-01T10:00:00+0000"
		},
		{
			"_id": "nyt://article/2",
			"headline": {"main": "No Abstract"},
			"web_url": "http://nytimes.com/other",
			"snippet": "snippet text"
		},
		{
			"_id": "nyt://article/3",
			"headline": {"main": "Broken"},
			"web_url": "nytimes.com/relative"
		}
	]}}`), &resp)
	require.NoError(t, err)

	articles, skipped := Map(resp.Response.Docs, DefaultImageBase)
	require.Len(t, skipped, 1)
	assert.Equal(t, "nyt://article/3", skipped[0].ID)

	require.Len(t, articles, 2)
	assert.True(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).Equal(articles[0].PublishedAt))
	articles[0].PublishedAt = time.Time{}

	assert.Equal(t, []store.Article{
		{
			ID:         "nyt://article/1",
			Title:      "Test Headline",
			URL:        "https://nytimes.com/test-article",
			Multimedia: []string{"https://static01.nyt.com/images/test-image"},
			Abstract:   "blahblahblah",
		},
		{
			ID:         "nyt://article/2",
			Title:      "No Abstract",
			URL:        "http://nytimes.com/other",
			Multimedia: []string{},
			Abstract:   "snippet text",
		},
	}, articles)

	for _, a := range articles {
		assert.Regexp(t, `^https?://`, a.URL)
		assert.NotNil(t, a.Multimedia)
	}
}

func TestMap_KeepsImagesWithoutBase(t *testing.T) {
	docs := []Doc{{
		WebURL:     "https://nytimes.com/a",
		Headline:   Headline{Main: "A"},
		Multimedia: Multimedia{URLs: []string{"image/test-image.jpg", "https://cdn.example.com/b.jpg"}},
	}}

	articles, _ := Map(docs, "")
	require.Len(t, articles, 1)
	assert.Equal(t, []string{"image/test-image.jpg", "https://cdn.example.com/b.jpg"}, articles[0].Multimedia)

	articles, _ = Map(docs, DefaultImageBase)
	assert.Equal(t, []string{
		"https://static01.nyt.com/image/test-image.jpg",
		"https://cdn.example.com/b.jpg",
	}, articles[0].Multimedia)
}

func TestMap_ArticleJSON(t *testing.T) {
	articles, _ := Map([]Doc{{WebURL: "https://nytimes.com/a", Headline: Headline{Main: "A"}}}, "")
	bts, err := json.Marshal(articles[0])
	require.NoError(t, err)
	assert.Contains(t, string(bts), `"multimedia":[]`)
	assert.Contains(t, string(bts), `"article_url":"https://nytimes.com/a"`)
}
