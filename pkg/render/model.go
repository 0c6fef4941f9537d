package render

import (
	"fmt"
	"strings"

	"github.com/aretw0/cvpro/pkg/core"
)

// Themes lists the recognized settings.theme values.
var Themes = []string{"academic", "modern", "minimal"}

type pageView struct {
	Lang   string
	Theme  string
	Labels map[string]string

	FullName  string
	Title     string
	ShowPhoto bool
	Photo     string
	Contact   []contactItem
	Summary   string

	SkillStyle string
	Skills     []skillView
	Languages  []languageView
	Jobs       []entryView
	Education  []entryView

	ShowCertifications bool
	Certifications     []entryView
	ShowHobbies        bool
	Hobbies            []string
	ShowReferences     bool
	References         string
}

type contactItem struct {
	Field string
	Value string
}

type skillView struct {
	ID        string
	Name      string
	Level     int
	LevelText string
	LevelKey  string
	Blocks    string
	Stars     []bool
}

type languageView struct {
	ID    string
	Name  string
	Level string
}

type entryView struct {
	ID       string
	Title    string
	Subtitle string
	Start    string
	End      string
	Date     string
	Lines    []string
	URL      string
}

var contactFields = []string{"location", "phone", "email", "linkedin", "website", "github"}

func newPage(doc core.Document, tr core.Translator, lang string) pageView {
	personal := node(doc[core.KeyPersonal])
	contact := node(doc[core.KeyContact])
	settings := node(doc[core.KeySettings])

	p := pageView{
		Lang:   lang,
		Theme:  oneOf(text(settings[core.SettingTheme]), Themes, core.DefaultTheme),
		Labels: make(map[string]string),

		FullName:  text(personal["fullName"]),
		Title:     text(personal["title"]),
		ShowPhoto: flag(settings, core.SettingShowPhoto),
		Photo:     text(personal["photo"]),
		Summary:   text(doc[core.KeySummary]),

		SkillStyle: oneOf(text(settings[core.SettingSkillDisplayStyle]), core.SkillStyles, core.DefaultSkillStyle),

		ShowCertifications: flag(settings, core.SettingShowCertifications),
		ShowHobbies:        flag(settings, core.SettingShowHobbies),
		ShowReferences:     flag(settings, core.SettingShowReferences),
		References:         text(doc[core.KeyReferences]),
	}

	for _, key := range []string{"contact", "skills", "languages", "hobbies", "summary", "experience", "education", "certifications", "references"} {
		p.Labels[key] = tr.T("sections." + key)
	}
	p.Labels["photoAdd"] = tr.T("ui.photoAdd")

	for _, field := range contactFields {
		if v := text(contact[field]); v != "" {
			p.Contact = append(p.Contact, contactItem{Field: field, Value: v})
		}
	}

	for _, r := range records(doc[core.KeySkills]) {
		level := core.ClampLevel(core.Level(r))
		p.Skills = append(p.Skills, skillView{
			ID:        text(r[core.IDField]),
			Name:      text(r["name"]),
			Level:     level,
			LevelKey:  strings.TrimPrefix(core.LevelKey(level), "levels."),
			LevelText: tr.T(core.LevelKey(level)),
			Blocks:    blocks(level),
			Stars:     stars(level),
		})
	}

	for _, r := range records(doc[core.KeyLanguages]) {
		p.Languages = append(p.Languages, languageView{
			ID:    text(r[core.IDField]),
			Name:  text(r["name"]),
			Level: text(r["level"]),
		})
	}

	for _, r := range records(doc[core.KeyJobs]) {
		p.Jobs = append(p.Jobs, entryView{
			ID:       text(r[core.IDField]),
			Title:    text(r["title"]),
			Subtitle: text(r["company"]),
			Start:    text(r["startDate"]),
			End:      text(r["endDate"]),
			Lines:    lines(r["description"]),
		})
	}

	for _, r := range records(doc[core.KeyEducation]) {
		p.Education = append(p.Education, entryView{
			ID:       text(r[core.IDField]),
			Title:    text(r["degree"]),
			Subtitle: text(r["school"]),
			Start:    text(r["startDate"]),
			End:      text(r["endDate"]),
			Lines:    lines(r["description"]),
		})
	}

	for _, r := range records(doc[core.KeyCertifications]) {
		p.Certifications = append(p.Certifications, entryView{
			ID:       text(r[core.IDField]),
			Title:    text(r["name"]),
			Subtitle: text(r["issuer"]),
			Date:     text(r["date"]),
			URL:      text(r["url"]),
		})
	}

	for _, r := range records(doc[core.KeyHobbies]) {
		p.Hobbies = append(p.Hobbies, text(r["name"]))
	}

	return p
}

func node(v any) core.Node {
	if m, ok := v.(core.Node); ok {
		return m
	}
	return core.Node{}
}

func records(v any) []core.Node {
	coll, _ := v.([]any)
	out := make([]core.Node, 0, len(coll))
	for _, item := range coll {
		if m, ok := item.(core.Node); ok {
			out = append(out, m)
		}
	}
	return out
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// flag reads a settings boolean; absent means shown.
func flag(settings core.Node, key string) bool {
	v, ok := settings[key].(bool)
	return !ok || v
}

func oneOf(v string, allowed []string, fallback string) string {
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}

// lines accepts a bullet list or free text with one bullet per line.
func lines(v any) []string {
	var out []string
	switch d := v.(type) {
	case []any:
		for _, item := range d {
			if s := strings.TrimSpace(text(item)); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, line := range strings.Split(d, "\n") {
			if s := strings.TrimSpace(line); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func blocks(level int) string {
	filled := (level + 5) / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func stars(level int) []bool {
	count := (level + 10) / 20
	out := make([]bool, 5)
	for i := range out {
		out[i] = i < count
	}
	return out
}
