package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cvpro/pkg/core"
)

func sampleTree() core.Node {
	return core.Node{
		"summary": "text",
		"personal": core.Node{
			"fullName": "Ada",
			"photo":    nil,
		},
		"jobs": []any{
			core.Node{"id": "job-1", "title": "Engineer"},
			core.Node{"id": "job-2", "title": "Lead"},
		},
	}
}

func TestLookup(t *testing.T) {
	tree := sampleTree()

	cases := []struct {
		path  string
		want  any
		found bool
	}{
		{"summary", "text", true},
		{"personal.fullName", "Ada", true},
		{"personal.photo", nil, true},
		{"jobs.job-2.title", "Lead", true},
		{"jobs.job-3.title", nil, false},
		{"summary.length", nil, false},
		{"personal.photo.url", nil, false},
		{"missing", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			got, ok := core.Lookup(tree, tc.path)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("Record By Id", func(t *testing.T) {
		got, ok := core.Lookup(tree, "jobs.job-1")
		require.True(t, ok)
		assert.Equal(t, core.Node{"id": "job-1", "title": "Engineer"}, got)
	})
}

func TestResolve(t *testing.T) {
	t.Run("Existing Mapping", func(t *testing.T) {
		tree := sampleTree()
		container, key := core.Resolve(tree, "personal.fullName")
		assert.Equal(t, "fullName", key)
		assert.Equal(t, tree["personal"], container)
	})

	t.Run("Record In Collection", func(t *testing.T) {
		tree := sampleTree()
		container, key := core.Resolve(tree, "jobs.job-2.title")
		require.IsType(t, core.Node{}, container)
		assert.Equal(t, "title", key)
		assert.Equal(t, "job-2", container.(core.Node)["id"])
	})

	t.Run("Creates Missing Mappings", func(t *testing.T) {
		tree := sampleTree()
		container, key := core.Resolve(tree, "a.b.c")
		assert.Equal(t, "c", key)
		assert.Equal(t, core.Node{}, container)
		assert.Equal(t, core.Node{"b": core.Node{}}, tree["a"])
	})

	t.Run("Nil Becomes Mapping", func(t *testing.T) {
		tree := sampleTree()
		container, _ := core.Resolve(tree, "personal.photo.url")
		assert.NotNil(t, container)
		assert.Equal(t, core.Node{}, tree["personal"].(core.Node)["photo"])
	})

	t.Run("Unknown Record", func(t *testing.T) {
		tree := sampleTree()
		container, _ := core.Resolve(tree, "jobs.job-9.title")
		assert.Nil(t, container)
	})

	t.Run("Through Scalar", func(t *testing.T) {
		tree := sampleTree()
		container, _ := core.Resolve(tree, "summary.x")
		assert.Nil(t, container)
	})

	t.Run("Ends At Collection Record", func(t *testing.T) {
		tree := sampleTree()
		container, key := core.Resolve(tree, "jobs.job-1")
		assert.IsType(t, []any{}, container)
		assert.Equal(t, "job-1", key)
	})
}

func TestRecordID(t *testing.T) {
	id, ok := core.RecordID(core.Node{"id": "x"})
	assert.True(t, ok)
	assert.Equal(t, "x", id)

	_, ok = core.RecordID(core.Node{"id": 3})
	assert.False(t, ok)

	_, ok = core.RecordID("scalar")
	assert.False(t, ok)
}
