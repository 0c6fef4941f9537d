package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cvpro/pkg/core"
)

func TestDecode(t *testing.T) {
	t.Run("JSON Numbers", func(t *testing.T) {
		node, err := core.Decode(`{"level": 85, "ratio": 0.5, "big": 12345678901}`)
		require.NoError(t, err)
		assert.Equal(t, 85, node["level"])
		assert.Equal(t, 0.5, node["ratio"])
		assert.Equal(t, 12345678901, node["big"])
	})

	t.Run("YAML", func(t *testing.T) {
		node, err := core.Decode("personal:\n  fullName: Ada\nskills:\n  - id: s1\n    level: 40\n")
		require.NoError(t, err)
		assert.Equal(t, core.Node{"fullName": "Ada"}, node["personal"])
		assert.Equal(t, []any{core.Node{"id": "s1", "level": 40}}, node["skills"])
	})

	invalid := map[string]string{
		"Empty":         "   ",
		"Broken JSON":   `{"a":`,
		"Trailing Data": `{"a":1} junk`,
		"JSON Array":    `[1, 2]`,
		"JSON Scalar":   `42`,
		"YAML Sequence": "- a\n- b\n",
		"Plain Text":    "hello world",
	}
	for name, text := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := core.Decode(text)
			assert.True(t, errors.Is(err, core.ErrParse), "got %v", err)
		})
	}
}

func TestEncode(t *testing.T) {
	doc := core.Document{"b": "<tag>", "a": []any{1, 2}}

	t.Run("Compact", func(t *testing.T) {
		out, err := core.Encode(doc)
		require.NoError(t, err)
		assert.Equal(t, `{"a":[1,2],"b":"<tag>"}`, out)
	})

	t.Run("Indented", func(t *testing.T) {
		out, err := core.EncodeIndent(doc)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": \"<tag>\"\n}", out)
	})

	t.Run("YAML", func(t *testing.T) {
		out, err := core.EncodeYAML(doc)
		require.NoError(t, err)
		assert.Contains(t, out, "b: <tag>")

		back, err := core.Decode(out)
		require.NoError(t, err)
		assert.Equal(t, doc, back)
	})
}

func TestDecodeValue(t *testing.T) {
	v, err := core.DecodeValue([]byte(`{"n": 3, "tags": ["x"]}`))
	require.NoError(t, err)
	assert.Equal(t, core.Node{"n": 3, "tags": []any{"x"}}, v)

	_, err = core.DecodeValue([]byte(`nope`))
	assert.ErrorIs(t, err, core.ErrParse)

	_, err = core.DecodeValue([]byte(`2019 - 2023`))
	assert.ErrorIs(t, err, core.ErrParse, "trailing text is not a number")
}
