package render_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cvpro/pkg/core"
	"github.com/aretw0/cvpro/pkg/i18n"
	"github.com/aretw0/cvpro/pkg/render"
)

func renderDoc(t *testing.T, doc core.Document, opts render.Options) string {
	t.Helper()
	out, err := render.HTMLString(doc, opts)
	require.NoError(t, err)
	return out
}

func TestHTML(t *testing.T) {
	t.Run("Default Document", func(t *testing.T) {
		out := renderDoc(t, core.NewDefault(nil), render.Options{})

		assert.Contains(t, out, `<html lang="en">`)
		assert.Contains(t, out, `class="theme-academic"`)
		assert.Contains(t, out, "John Doe")
		assert.Contains(t, out, "Tech Corp Inc.")
		assert.Contains(t, out, "2020 - Present")
		assert.Contains(t, out, "<li>Led development of microservices architecture.</li>")
		assert.Contains(t, out, `style="width: 85%;"`)
		assert.Contains(t, out, "Projects &amp; Certifications")
		assert.NotContains(t, out, "contenteditable")
		assert.NotContains(t, out, "<script>")
	})

	t.Run("Escapes Content", func(t *testing.T) {
		doc := core.NewDefault(nil)
		doc["summary"] = `<script>alert("x")</script>`
		out := renderDoc(t, doc, render.Options{})
		assert.NotContains(t, out, `<script>alert`)
		assert.Contains(t, out, "&lt;script&gt;")
	})

	t.Run("Hidden Sections", func(t *testing.T) {
		doc := core.NewDefault(nil)
		settings := doc["settings"].(core.Node)
		settings["showHobbies"] = false
		settings["showCertifications"] = false
		settings["showReferences"] = false
		settings["showPhoto"] = false

		out := renderDoc(t, doc, render.Options{})
		assert.NotContains(t, out, "Photography")
		assert.NotContains(t, out, "AWS Solutions Architect")
		assert.NotContains(t, out, "Available upon request.")
		assert.NotContains(t, out, `class="photo-container"`)
	})

	t.Run("Skill Styles", func(t *testing.T) {
		cases := map[string]string{
			"bar":      `class="progress-bar"`,
			"bar-text": `class="skill-level-bartext"`,
			"stars":    "★★★★☆",
			"blocks":   "█████████░",
			"text":     `class="level-badge level-advanced"`,
		}
		for style, want := range cases {
			t.Run(style, func(t *testing.T) {
				doc := core.NewDefault(nil)
				doc["settings"].(core.Node)["skillDisplayStyle"] = style
				out := renderDoc(t, doc, render.Options{})
				assert.Contains(t, out, want)
				assert.Contains(t, out, "skill-style-"+style)
			})
		}
	})

	t.Run("Unknown Theme And Style Fall Back", func(t *testing.T) {
		doc := core.NewDefault(nil)
		doc["settings"].(core.Node)["theme"] = "neon"
		doc["settings"].(core.Node)["skillDisplayStyle"] = "pie"
		out := renderDoc(t, doc, render.Options{})
		assert.Contains(t, out, "theme-academic")
		assert.Contains(t, out, "skill-style-bar")
	})

	t.Run("Translated Labels", func(t *testing.T) {
		tr, err := i18n.New("tr")
		require.NoError(t, err)
		out := renderDoc(t, core.NewDefault(tr), render.Options{Translator: tr, Lang: "tr"})
		assert.Contains(t, out, `<html lang="tr">`)
		assert.Contains(t, out, "İletişim")
	})

	t.Run("Editable", func(t *testing.T) {
		out := renderDoc(t, core.NewDefault(nil), render.Options{Editable: true})
		assert.Contains(t, out, `data-field="jobs.job-1.date" contenteditable="true"`)
		assert.Contains(t, out, "<script>")
		assert.Contains(t, out, "/api/path/")
	})

	t.Run("Photo Data URL", func(t *testing.T) {
		doc := core.NewDefault(nil)
		doc["personal"].(core.Node)["photo"] = "data:image/png;base64,AAAA"
		out := renderDoc(t, doc, render.Options{})
		assert.Contains(t, out, `src="data:image/png;base64,AAAA"`)

		doc["personal"].(core.Node)["photo"] = "javascript:alert(1)"
		out = renderDoc(t, doc, render.Options{})
		assert.False(t, strings.Contains(out, "javascript:"))
	})

	t.Run("Description As Text", func(t *testing.T) {
		doc := core.NewDefault(nil)
		doc["education"].([]any)[0].(core.Node)["description"] = "Thesis on compilers\n\nDean's list"
		out := renderDoc(t, doc, render.Options{})
		assert.Contains(t, out, "<li>Thesis on compilers</li><li>Dean&#39;s list</li>")
	})
}
