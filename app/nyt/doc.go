package nyt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Semior001/nytsearch/app/store"
	"github.com/samber/lo"
)

// SearchResponse is a body of the article search endpoint.
type SearchResponse struct {
	Status   string `json:"status"`
	Response struct {
		Docs []Doc `json:"docs"`
	} `json:"response"`
	Fault *struct {
		FaultString string `json:"faultstring"`
	} `json:"fault,omitempty"`
}

// Doc is an article as returned by the article search API.
type Doc struct {
	ID            string     `json:"_id"`
	WebURL        string     `json:"web_url"`
	Snippet       string     `json:"snippet"`
	Abstract      string     `json:"abstract"`
	LeadParagraph string     `json:"lead_paragraph"`
	PubDate       string     `json:"pub_date"`
	Source        string     `json:"source"`
	Headline      Headline   `json:"headline"`
	Multimedia    Multimedia `json:"multimedia"`
}

// Headline of the article.
type Headline struct {
	Main string `json:"main"`
}

// Multimedia holds image URLs of an article.
// API returns either an object with "default" and "thumbnail" images,
// or an array of images, both are decoded into the flat list.
// Any other shape decodes into an empty list and is kept in Unexpected.
type Multimedia struct {
	URLs       []string
	Unexpected string
}

type image struct {
	URL string `json:"url"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Multimedia) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	m.URLs = []string{}

	var imgs []*image
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '[':
		if err := json.Unmarshal(data, &imgs); err != nil {
			m.Unexpected = fmt.Sprintf("%.40s", data)
			return nil
		}
	case data[0] == '{':
		var obj struct {
			Default   *image `json:"default"`
			Thumbnail *image `json:"thumbnail"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			m.Unexpected = fmt.Sprintf("%.40s", data)
			return nil
		}
		imgs = []*image{obj.Default, obj.Thumbnail}
	default:
		m.Unexpected = fmt.Sprintf("%.40s", data)
		return nil
	}

	for _, img := range imgs {
		if img != nil && img.URL != "" {
			m.URLs = append(m.URLs, img.URL)
		}
	}
	return nil
}

var webURLRe = regexp.MustCompile(`^https?://`)

// Map converts docs into articles. Docs without a valid web url are skipped.
// Relative image urls are resolved against imageBase, if it is set.
func Map(docs []Doc, imageBase string) (articles []store.Article, skipped []Doc) {
	articles = make([]store.Article, 0, len(docs))

	for _, doc := range docs {
		if !webURLRe.MatchString(doc.WebURL) {
			skipped = append(skipped, doc)
			continue
		}

		a := store.Article{
			ID:         doc.ID,
			Title:      doc.Headline.Main,
			URL:        doc.WebURL,
			Abstract:   lo.Ternary(doc.Abstract != "", doc.Abstract, doc.Snippet),
			Multimedia: lo.Map(doc.Multimedia.URLs, func(u string, _ int) string { return resolve(imageBase, u) }),
		}

		if doc.PubDate != "" {
			if t, err := parsePubDate(doc.PubDate); err == nil {
				a.PublishedAt = t
			}
		}

		articles = append(articles, a)
	}

	return articles, skipped
}

func resolve(base, u string) string {
	if base == "" || webURLRe.MatchString(u) {
		return u
	}

	b, err := url.Parse(base)
	if err != nil {
		return u
	}

	ref, err := url.Parse(strings.TrimPrefix(u, "/"))
	if err != nil {
		return u
	}

	return b.ResolveReference(ref).String()
}

// pub_date comes either in RFC3339 or with a numeric zone without a colon.
func parsePubDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700", "2006-01-02T15:04:05Z0700"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown pub_date format: %q", s)
}
