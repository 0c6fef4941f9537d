package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cvpro/pkg/core"
	"github.com/aretw0/cvpro/pkg/validate"
)

func TestDocument(t *testing.T) {
	t.Run("Defaults Are Valid", func(t *testing.T) {
		issues, err := validate.Document(core.NewDefault(nil))
		require.NoError(t, err)
		assert.Empty(t, issues)
		assert.NoError(t, validate.Check(core.NewDefault(nil)))
	})

	t.Run("Unknown Keys Are Allowed", func(t *testing.T) {
		doc := core.NewDefault(nil)
		doc["custom"] = core.Node{"anything": 1}
		issues, err := validate.Document(doc)
		require.NoError(t, err)
		assert.Empty(t, issues)
	})

	t.Run("Reports Violations", func(t *testing.T) {
		doc := core.NewDefault(nil)
		doc["settings"].(core.Node)["skillDisplayStyle"] = "pie"
		doc["skills"].([]any)[0].(core.Node)["level"] = 150
		doc["hobbies"] = []any{core.Node{"name": "no id"}}
		delete(doc, "jobs")

		issues, err := validate.Document(doc)
		require.NoError(t, err)

		fields := make([]string, 0, len(issues))
		for _, issue := range issues {
			fields = append(fields, issue.Field)
		}
		assert.Contains(t, fields, "settings.skillDisplayStyle")
		assert.Contains(t, fields, "skills.0.level")
		assert.Contains(t, fields, "hobbies.0")
		assert.Contains(t, fields, "(root)")

		err = validate.Check(doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema validation failed")
	})

	t.Run("Schema Is Exposed", func(t *testing.T) {
		assert.Contains(t, string(validate.Schema()), `"title": "CV document"`)
	})
}
