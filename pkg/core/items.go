package core

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/cvpro/pkg/i18n"
)

// NewID generates a record id such as "skill-1718000000000-1f0c2a9b".
// An empty prefix defaults to "item".
func NewID(prefix string) string {
	if prefix == "" {
		prefix = "item"
	}
	suffix := uuid.NewString()[:8]
	return prefix + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + suffix
}

// ItemKind names a kind of record a user can add.
type ItemKind string

const (
	ItemSkill    ItemKind = "skill"
	ItemJob      ItemKind = "job"
	ItemEdu      ItemKind = "edu"
	ItemCert     ItemKind = "cert"
	ItemLanguage ItemKind = "lang"
	ItemHobby    ItemKind = "hobby"
)

// ItemKinds maps each kind to the collection its records live in.
var ItemKinds = map[ItemKind]string{
	ItemSkill:    KeySkills,
	ItemJob:      KeyJobs,
	ItemEdu:      KeyEducation,
	ItemCert:     KeyCertifications,
	ItemLanguage: KeyLanguages,
	ItemHobby:    KeyHobbies,
}

// NewItem builds a placeholder record of the given kind with a fresh id and
// returns the collection it belongs to.
func NewItem(kind ItemKind, tr Translator) (string, Node, error) {
	collection, ok := ItemKinds[kind]
	if !ok {
		return "", nil, fmt.Errorf("unknown item kind %q", kind)
	}
	if tr == nil {
		tr = i18n.Default()
	}
	t := tr.T
	id := NewID(string(kind))

	var record Node
	switch kind {
	case ItemSkill:
		record = Node{IDField: id, "name": t("mock.skill1"), "level": 50}
	case ItemJob:
		record = Node{
			IDField:       id,
			"title":       t("mock.jobTitle"),
			"company":     t("mock.jobCompany"),
			"startDate":   t("mock.jobStart"),
			"endDate":     t("mock.jobEnd"),
			"current":     true,
			"description": []any{t("mock.jobDesc1")},
		}
	case ItemEdu:
		record = Node{
			IDField:       id,
			"degree":      t("mock.eduDegree"),
			"school":      t("mock.eduSchool"),
			"startDate":   t("mock.eduStart"),
			"endDate":     t("mock.eduEnd"),
			"description": "",
		}
	case ItemCert:
		record = Node{
			IDField:  id,
			"name":   t("mock.certName"),
			"issuer": t("mock.certIssuer"),
			"date":   strconv.Itoa(time.Now().Year()),
			"url":    "",
		}
	case ItemLanguage:
		record = Node{IDField: id, "name": t("mock.lang2"), "level": t("mock.lang2Level")}
	case ItemHobby:
		record = Node{IDField: id, "name": t("mock.hobby1")}
	}
	return collection, record, nil
}

// Skill level helpers. Levels are integers in [0, 100].

// TextLevels is the cycle used by the text badge display.
var TextLevels = []int{10, 30, 50, 75, 95}

// ClampLevel bounds level to [0, 100].
func ClampLevel(level int) int {
	return max(0, min(100, level))
}

// StarLevel converts a 1-5 star rating to a level.
func StarLevel(stars int) int {
	return ClampLevel(stars * 20)
}

// SnapLevel rounds a percentage to the nearest 10.
func SnapLevel(percent float64) int {
	return ClampLevel(int(math.Round(percent/10)) * 10)
}

// NextTextLevel advances level to the next step of TextLevels, wrapping around.
func NextTextLevel(level int) int {
	idx := -1
	for i, l := range TextLevels {
		if level <= l {
			idx = i
			break
		}
	}
	return TextLevels[(idx+1)%len(TextLevels)]
}

// LevelKey maps a level to its i18n key under "levels.".
func LevelKey(level int) string {
	switch {
	case level >= 90:
		return "levels.expert"
	case level >= 75:
		return "levels.advanced"
	case level >= 50:
		return "levels.intermediate"
	case level >= 25:
		return "levels.beginner"
	default:
		return "levels.novice"
	}
}

// Level reads a record's numeric level as an int.
func Level(record Node) int {
	switch v := record["level"].(type) {
	case int:
		return v
	case float64:
		return int(math.Round(v))
	default:
		return 0
	}
}
