package core

import (
	"time"

	"github.com/aretw0/cvpro/pkg/i18n"
)

// SchemaVersion is the document version written by NewDefault.
const SchemaVersion = "2.0"

// TimestampLayout matches the ISO-8601 form used for lastModified.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Settings keys and their defaults.
const (
	SettingTheme              = "theme"
	SettingShowPhoto          = "showPhoto"
	SettingShowCertifications = "showCertifications"
	SettingShowHobbies        = "showHobbies"
	SettingShowReferences     = "showReferences"
	SettingSkillDisplayStyle  = "skillDisplayStyle"

	DefaultTheme      = "academic"
	DefaultSkillStyle = "bar"
)

// SkillStyles lists the recognized skillDisplayStyle values.
var SkillStyles = []string{"bar", "bar-text", "stars", "blocks", "text"}

// DefaultSettings returns a fresh settings record with every recognized key.
func DefaultSettings() Node {
	return Node{
		SettingTheme:              DefaultTheme,
		SettingShowPhoto:          true,
		SettingShowCertifications: true,
		SettingShowHobbies:        true,
		SettingShowReferences:     true,
		SettingSkillDisplayStyle:  DefaultSkillStyle,
	}
}

// NewDefault creates a fully populated document with placeholder content.
// A nil translator uses the English catalog.
func NewDefault(tr Translator) Document {
	if tr == nil {
		tr = i18n.Default()
	}
	t := tr.T

	return Document{
		KeyVersion:      SchemaVersion,
		KeyLastModified: time.Now().UTC().Format(TimestampLayout),
		KeyPersonal: Node{
			"fullName": t("mock.fullName"),
			"title":    t("mock.title"),
			"photo":    nil,
		},
		KeyContact: Node{
			"location": t("mock.location"),
			"phone":    t("mock.phone"),
			"email":    t("mock.email"),
			"linkedin": t("mock.linkedin"),
			"website":  "",
			"github":   "",
		},
		KeySummary: t("mock.summary"),
		KeySkills: []any{
			Node{IDField: "skill-1", "name": t("mock.skill1"), "level": 85},
			Node{IDField: "skill-2", "name": t("mock.skill2"), "level": 90},
			Node{IDField: "skill-3", "name": t("mock.skill3"), "level": 75},
		},
		KeyLanguages: []any{
			Node{IDField: "lang-1", "name": t("mock.lang1"), "level": t("mock.lang1Level")},
			Node{IDField: "lang-2", "name": t("mock.lang2"), "level": t("mock.lang2Level")},
		},
		KeyJobs: []any{
			Node{
				IDField:     "job-1",
				"title":     t("mock.jobTitle"),
				"company":   t("mock.jobCompany"),
				"startDate": t("mock.jobStart"),
				"endDate":   t("mock.jobEnd"),
				"current":   true,
				"description": []any{
					t("mock.jobDesc1"),
					t("mock.jobDesc2"),
				},
			},
		},
		KeyEducation: []any{
			Node{
				IDField:       "edu-1",
				"degree":      t("mock.eduDegree"),
				"school":      t("mock.eduSchool"),
				"startDate":   t("mock.eduStart"),
				"endDate":     t("mock.eduEnd"),
				"description": "",
			},
		},
		KeyCertifications: []any{
			Node{
				IDField:  "cert-1",
				"name":   t("mock.certName"),
				"issuer": t("mock.certIssuer"),
				"date":   t("mock.certDate"),
				"url":    "",
			},
		},
		KeyHobbies: []any{
			Node{IDField: "hobby-1", "name": t("mock.hobby1")},
			Node{IDField: "hobby-2", "name": t("mock.hobby2")},
		},
		KeyReferences: t("mock.references"),
		KeySettings:   DefaultSettings(),
	}
}
