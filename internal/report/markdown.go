package report

import (
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// WriteMarkdown renders the HTML page and converts it to GitHub flavored Markdown
func WriteMarkdown(w io.Writer, r Report, opts Options) error {
	page, err := renderHTML(r, opts)
	if err != nil {
		return err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	// Page title duplicates the heading
	converter.AddRules(md.Rule{
		Filter: []string{"title"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			empty := ""
			return &empty
		},
	})

	out, err := converter.ConvertString(page)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, strings.TrimSpace(out)+"\n")
	return err
}
