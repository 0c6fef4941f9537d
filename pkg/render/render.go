// Package render turns a CV document into a printable HTML page and, through
// headless Chrome, into a PDF.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/cvpro/pkg/core"
	"github.com/aretw0/cvpro/pkg/i18n"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Options controls HTML rendering.
type Options struct {
	Translator core.Translator // Section labels and level names. Nil uses English.
	Lang       string          // Value of the html lang attribute.
	Editable   bool            // Mark fields contenteditable and save them on blur.
}

var baseTemplate = sync.OnceValues(func() (*template.Template, error) {
	return template.New("cvpro").Funcs(funcs(false)).ParseFS(templateFS, "templates/*.tmpl")
})

// HTML writes the rendered page for doc to w.
func HTML(w io.Writer, doc core.Document, opts Options) error {
	base, err := baseTemplate()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	tmpl, err := base.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone templates: %w", err)
	}
	tmpl.Funcs(funcs(opts.Editable))

	tr := opts.Translator
	if tr == nil {
		tr = i18n.Default()
	}
	lang := opts.Lang
	if lang == "" {
		lang = i18n.DefaultLang
	}

	if err := tmpl.ExecuteTemplate(w, "cv", newPage(doc, tr, lang)); err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}
	return nil
}

// HTMLString renders doc to a string.
func HTMLString(doc core.Document, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := HTML(&buf, doc, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type skillArgs struct {
	Style string
	Skill skillView
}

type entryArgs struct {
	Collection    string
	TitleField    string
	SubtitleField string
	Entry         entryView
}

func funcs(editable bool) template.FuncMap {
	return template.FuncMap{
		"editable": func() bool { return editable },
		"edit": func(path string) template.HTMLAttr {
			attr := `data-field="` + html.EscapeString(path) + `"`
			if editable {
				attr += ` contenteditable="true"`
			}
			return template.HTMLAttr(attr)
		},
		"photoURL": photoURL,
		"skillArgs": func(style string, s skillView) skillArgs {
			return skillArgs{Style: style, Skill: s}
		},
		"entryArgs": func(collection, titleField, subtitleField string, e entryView) entryArgs {
			return entryArgs{Collection: collection, TitleField: titleField, SubtitleField: subtitleField, Entry: e}
		},
	}
}

// photoURL lets embedded image data through the URL sanitizer. Photos are
// stored as data URLs; anything else must be http(s).
func photoURL(src string) template.URL {
	switch {
	case strings.HasPrefix(src, "data:image/"),
		strings.HasPrefix(src, "https://"),
		strings.HasPrefix(src, "http://"):
		return template.URL(src)
	default:
		return ""
	}
}
