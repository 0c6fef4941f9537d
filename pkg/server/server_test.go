package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cvpro/pkg/adapters/memory"
	"github.com/aretw0/cvpro/pkg/core"
	"github.com/aretw0/cvpro/pkg/server"
)

func setup(t *testing.T) (*server.Server, *core.Store) {
	t.Helper()
	store, err := core.Open(context.Background(), memory.NewBackend(""), core.Config{SaveDelay: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	srv, err := server.New(server.Config{Store: store})
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, srv *server.Server, method, target, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &m))
	return m
}

func TestNew(t *testing.T) {
	_, err := server.New(server.Config{})
	assert.ErrorIs(t, err, core.ErrNoBackend)
}

func TestPaths(t *testing.T) {
	t.Run("Get Document", func(t *testing.T) {
		srv, _ := setup(t)
		code, body := do(t, srv, http.MethodGet, "/api/document", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "2.0", decode(t, body)["version"])
	})

	t.Run("Get Path", func(t *testing.T) {
		srv, _ := setup(t)
		code, body := do(t, srv, http.MethodGet, "/api/path/jobs.job-1.company", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Tech Corp Inc.", decode(t, body)["value"])

		code, _ = do(t, srv, http.MethodGet, "/api/path/jobs.ghost.company", "")
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("Set Path", func(t *testing.T) {
		srv, store := setup(t)
		code, _ := do(t, srv, http.MethodPut, "/api/path/personal.fullName", `"Grace Hopper"`)
		assert.Equal(t, http.StatusOK, code)
		name, _ := store.Get("personal.fullName")
		assert.Equal(t, "Grace Hopper", name)
	})

	t.Run("Set Date Alias", func(t *testing.T) {
		srv, store := setup(t)
		code, _ := do(t, srv, http.MethodPut, "/api/path/jobs.job-1.date", `"2018 - 2022"`)
		assert.Equal(t, http.StatusOK, code)
		end, _ := store.Get("jobs.job-1.endDate")
		assert.Equal(t, "2022", end)
	})

	t.Run("Set Date Alias From Number", func(t *testing.T) {
		srv, store := setup(t)
		code, _ := do(t, srv, http.MethodPut, "/api/path/jobs.job-1.date", `2020`)
		assert.Equal(t, http.StatusOK, code)
		start, _ := store.Get("jobs.job-1.startDate")
		end, _ := store.Get("jobs.job-1.endDate")
		assert.Equal(t, "2020", start)
		assert.Equal(t, "", end)
		_, exists := store.Get("jobs.job-1.date")
		assert.False(t, exists)
	})

	t.Run("Get Subtree During Writes", func(t *testing.T) {
		srv, _ := setup(t)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				do(t, srv, http.MethodPut, "/api/path/personal.x"+strconv.Itoa(i), `"v"`)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				code, _ := do(t, srv, http.MethodGet, "/api/path/personal", "")
				assert.Equal(t, http.StatusOK, code)
			}
		}()
		wg.Wait()

		code, body := do(t, srv, http.MethodGet, "/api/path/personal", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "v", decode(t, body)["value"].(map[string]any)["x24"])
	})

	t.Run("Set Rejects", func(t *testing.T) {
		srv, _ := setup(t)
		code, _ := do(t, srv, http.MethodPut, "/api/path/summary", `{broken`)
		assert.Equal(t, http.StatusBadRequest, code)

		code, body := do(t, srv, http.MethodPut, "/api/path/jobs.ghost.title", `"x"`)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Contains(t, decode(t, body)["error"], "not writable")
	})
}

func TestBatch(t *testing.T) {
	t.Run("Counts As One Revision", func(t *testing.T) {
		srv, store := setup(t)
		before := srv.Revision()

		code, body := do(t, srv, http.MethodPost, "/api/batch",
			`[{"path":"personal.fullName","value":"Ada"},{"path":"personal.title","value":"Analyst"},{"path":"jobs.ghost.title","value":"x"}]`)
		assert.Equal(t, http.StatusOK, code)
		result := decode(t, body)
		assert.Equal(t, float64(2), result["applied"])
		assert.Equal(t, []any{"jobs.ghost.title"}, result["failed"])

		assert.Equal(t, before+1, srv.Revision())
		title, _ := store.Get("personal.title")
		assert.Equal(t, "Analyst", title)
	})

	t.Run("Single Edits Count Separately", func(t *testing.T) {
		srv, store := setup(t)
		before := srv.Revision()
		store.Set("summary", "a")
		store.Set("summary", "b")
		assert.Equal(t, before+2, srv.Revision())
	})

	t.Run("Invalid Payload", func(t *testing.T) {
		srv, _ := setup(t)
		code, _ := do(t, srv, http.MethodPost, "/api/batch", `{"path":"summary"}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestCollections(t *testing.T) {
	t.Run("Add Record", func(t *testing.T) {
		srv, store := setup(t)
		code, body := do(t, srv, http.MethodPost, "/api/collections/skills/items", `{"name":"Go","level":80}`)
		assert.Equal(t, http.StatusCreated, code)
		id, _ := decode(t, body)["id"].(string)
		assert.True(t, strings.HasPrefix(id, "skills-"))

		skills, _ := store.Get("skills")
		assert.Len(t, skills, 4)
	})

	t.Run("Add Placeholder", func(t *testing.T) {
		srv, store := setup(t)
		code, _ := do(t, srv, http.MethodPost, "/api/collections/hobbies/items?kind=hobby", "")
		assert.Equal(t, http.StatusCreated, code)
		hobbies, _ := store.Get("hobbies")
		assert.Len(t, hobbies, 3)

		code, _ = do(t, srv, http.MethodPost, "/api/collections/jobs/items?kind=hobby", "")
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("Add To Non Collection", func(t *testing.T) {
		srv, _ := setup(t)
		code, _ := do(t, srv, http.MethodPost, "/api/collections/summary/items", `{"id":"x"}`)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("Update And Remove", func(t *testing.T) {
		srv, store := setup(t)
		code, _ := do(t, srv, http.MethodPatch, "/api/collections/jobs/items/job-1", `{"title":"CTO"}`)
		assert.Equal(t, http.StatusNoContent, code)
		title, _ := store.Get("jobs.job-1.title")
		assert.Equal(t, "CTO", title)

		code, _ = do(t, srv, http.MethodDelete, "/api/collections/jobs/items/job-1", "")
		assert.Equal(t, http.StatusNoContent, code)
		code, _ = do(t, srv, http.MethodDelete, "/api/collections/jobs/items/job-1", "")
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("Move And Reorder", func(t *testing.T) {
		srv, store := setup(t)
		code, _ := do(t, srv, http.MethodPost, "/api/collections/skills/move", `{"from":0,"to":2}`)
		assert.Equal(t, http.StatusNoContent, code)
		first, _ := store.Get("skills")
		id, _ := core.RecordID(first.([]any)[2])
		assert.Equal(t, "skill-1", id)

		code, _ = do(t, srv, http.MethodPost, "/api/collections/skills/move", `{"from":0,"to":9}`)
		assert.Equal(t, http.StatusNotFound, code)

		code, _ = do(t, srv, http.MethodPost, "/api/collections/skills/move", `{"from":0}`)
		assert.Equal(t, http.StatusBadRequest, code)

		code, _ = do(t, srv, http.MethodPost, "/api/collections/skills/reorder", `{"ids":["skill-3"]}`)
		assert.Equal(t, http.StatusNoContent, code)
		skills, _ := store.Get("skills")
		assert.Len(t, skills, 1)
	})
}

func TestBulk(t *testing.T) {
	t.Run("Export Formats", func(t *testing.T) {
		srv, _ := setup(t)
		code, body := do(t, srv, http.MethodGet, "/api/export", "")
		assert.Equal(t, http.StatusOK, code)
		assert.True(t, strings.HasPrefix(body, "{\n  \""))

		code, body = do(t, srv, http.MethodGet, "/api/export?format=yaml", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "version: \"2.0\"")
	})

	t.Run("Import", func(t *testing.T) {
		srv, store := setup(t)
		code, _ := do(t, srv, http.MethodPost, "/api/import", `{"summary":"imported"}`)
		assert.Equal(t, http.StatusNoContent, code)
		summary, _ := store.Get("summary")
		assert.Equal(t, "imported", summary)

		code, _ = do(t, srv, http.MethodPost, "/api/import", `{nope`)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("Reset And Save", func(t *testing.T) {
		srv, store := setup(t)
		store.Set("summary", "changed")
		assert.True(t, store.SavePending())

		code, _ := do(t, srv, http.MethodPost, "/api/save", "")
		assert.Equal(t, http.StatusNoContent, code)
		assert.False(t, store.SavePending())

		code, _ = do(t, srv, http.MethodPost, "/api/reset", "")
		assert.Equal(t, http.StatusNoContent, code)
		summary, _ := store.Get("summary")
		assert.NotEqual(t, "changed", summary)
	})
}

func TestTools(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		srv, store := setup(t)
		code, body := do(t, srv, http.MethodGet, "/api/validate", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, decode(t, body)["valid"])

		store.Set("settings.skillDisplayStyle", "pie")
		_, body = do(t, srv, http.MethodGet, "/api/validate", "")
		assert.Equal(t, false, decode(t, body)["valid"])
	})

	t.Run("Query", func(t *testing.T) {
		srv, _ := setup(t)
		code, body := do(t, srv, http.MethodGet, "/api/query?q=len(skills)", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, float64(3), decode(t, body)["result"])

		code, _ = do(t, srv, http.MethodGet, "/api/query", "")
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("State", func(t *testing.T) {
		srv, _ := setup(t)
		code, body := do(t, srv, http.MethodGet, "/api/state", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, `"save_pending":false`)
	})
}

func TestPages(t *testing.T) {
	t.Run("Editable Page", func(t *testing.T) {
		srv, _ := setup(t)
		code, body := do(t, srv, http.MethodGet, "/cv", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "John Doe")
		assert.Contains(t, body, `contenteditable="true"`)
	})

	t.Run("Print Page", func(t *testing.T) {
		srv, store := setup(t)
		_, body := do(t, srv, http.MethodGet, "/cv?print=1", "")
		assert.NotContains(t, body, `contenteditable="true"`)

		store.Set("personal.fullName", "Changed Name")
		_, body = do(t, srv, http.MethodGet, "/cv?print=1", "")
		assert.Contains(t, body, "Changed Name", "cached page is invalidated by edits")
	})

	t.Run("ETag Follows Revision", func(t *testing.T) {
		srv, store := setup(t)
		req := httptest.NewRequest(http.MethodGet, "/cv", nil)
		resp, err := srv.App().Test(req, -1)
		require.NoError(t, err)
		first := resp.Header.Get("ETag")
		resp.Body.Close()

		store.Set("summary", "new")
		resp, err = srv.App().Test(httptest.NewRequest(http.MethodGet, "/cv", nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.NotEqual(t, first, resp.Header.Get("ETag"))
	})

	t.Run("Pdf Disabled", func(t *testing.T) {
		srv, _ := setup(t)
		code, _ := do(t, srv, http.MethodGet, "/cv.pdf", "")
		assert.Equal(t, http.StatusNotImplemented, code)
	})
}
