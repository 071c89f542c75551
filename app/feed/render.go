package feed

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Semior001/nytsearch/app/store"
)

//go:embed data/page.html
var pageHTML string

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

// Page is a state of the feed to be rendered.
type Page struct {
	Query    string
	Articles []store.Article
	Err      error
	Settled  bool
}

// Render writes the page as HTML.
func Render(w io.Writer, p Page) error {
	if err := pageTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("execute page template: %w", err)
	}
	return nil
}
