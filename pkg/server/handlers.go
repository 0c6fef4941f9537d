package server

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/aretw0/cvpro/pkg/core"
	"github.com/aretw0/cvpro/pkg/render"
	"github.com/aretw0/cvpro/pkg/validate"
)

type moveReq struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type reorderReq struct {
	IDs []string `json:"ids"`
}

type batchEdit struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

func (s *Server) getDocument(c *fiber.Ctx) error {
	data, err := s.store.Export()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.SendString(data)
}

func (s *Server) getPath(c *fiber.Ctx) error {
	path, err := pathParam(c)
	if err != nil {
		return err
	}
	doc, err := s.snapshot()
	if err != nil {
		return err
	}
	value, ok := core.Lookup(doc, path)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("path %q not found", path))
	}
	return c.JSON(fiber.Map{"path": path, "value": value})
}

func (s *Server) setPath(c *fiber.Ctx) error {
	path, err := pathParam(c)
	if err != nil {
		return err
	}
	value, err := core.DecodeValue(c.Body())
	if err != nil {
		return err
	}
	if !s.store.Set(path, value) {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("path %q is not writable", path))
	}
	return c.JSON(fiber.Map{"path": path, "value": value})
}

// batch applies several field writes as one edit session, so page caches
// are invalidated once for the whole batch.
func (s *Server) batch(c *fiber.Ctx) error {
	var edits []batchEdit
	if err := json.Unmarshal(c.Body(), &edits); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload: want [{\"path\": ..., \"value\": ...}]")
	}

	session := s.view.Begin()
	defer session.Release()

	applied := 0
	failed := []string{}
	for _, edit := range edits {
		value, err := core.DecodeValue(edit.Value)
		if err != nil || !s.store.Set(edit.Path, value) {
			failed = append(failed, edit.Path)
			continue
		}
		applied++
	}
	return c.JSON(fiber.Map{"applied": applied, "failed": failed})
}

// addItem appends the JSON record in the body. An empty body with a
// ?kind= query adds a placeholder record of that kind instead.
func (s *Server) addItem(c *fiber.Ctx) error {
	name := c.Params("name")

	var record core.Node
	if len(c.Body()) == 0 {
		kind := core.ItemKind(c.Query("kind"))
		collection, placeholder, err := core.NewItem(kind, s.store.Translator())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if collection != name {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("kind %q belongs to %q", kind, collection))
		}
		record = placeholder
	} else {
		var err error
		if record, err = bodyRecord(c); err != nil {
			return err
		}
		if _, ok := core.RecordID(record); !ok {
			record[core.IDField] = core.NewID(name)
		}
	}

	if !s.store.AddItem(name, record) {
		return fmt.Errorf("%w: %s", core.ErrNotCollection, name)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (s *Server) updateItem(c *fiber.Ctx) error {
	name, id := c.Params("name"), c.Params("id")
	fields, err := bodyRecord(c)
	if err != nil {
		return err
	}
	if !s.store.UpdateItem(name, id, fields) {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("record %q not found in %q", id, name))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) removeItem(c *fiber.Ctx) error {
	name, id := c.Params("name"), c.Params("id")
	if !s.store.RemoveItem(name, id) {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("record %q not found in %q", id, name))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) moveItem(c *fiber.Ctx) error {
	var req moveReq
	if err := c.BodyParser(&req); err != nil || req.From == nil || req.To == nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload: want {\"from\": n, \"to\": n}")
	}
	name := c.Params("name")
	if !s.store.MoveItem(name, *req.From, *req.To) {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("cannot move %d to %d in %q", *req.From, *req.To, name))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) reorderItems(c *fiber.Ctx) error {
	var req reorderReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload: want {\"ids\": [...]}")
	}
	name := c.Params("name")
	if !s.store.ReorderItems(name, req.IDs) {
		return fmt.Errorf("%w: %s", core.ErrNotCollection, name)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) export(c *fiber.Ctx) error {
	if c.Query("format") == "yaml" {
		data, err := s.store.ExportYAML()
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="cv.yaml"`)
		return c.SendString(data)
	}

	data, err := s.store.Export()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="cv.json"`)
	return c.SendString(data)
}

func (s *Server) importDocument(c *fiber.Ctx) error {
	if !s.store.Import(c.UserContext(), string(c.Body())) {
		return fiber.NewError(fiber.StatusBadRequest, "import rejected: body is not a JSON or YAML mapping")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) reset(c *fiber.Ctx) error {
	s.store.Reset(c.UserContext())
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) save(c *fiber.Ctx) error {
	if err := s.store.SaveNow(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) validate(c *fiber.Ctx) error {
	doc, err := s.snapshot()
	if err != nil {
		return err
	}
	issues, err := validate.Document(doc)
	if err != nil {
		return err
	}
	if issues == nil {
		issues = []validate.Issue{}
	}
	return c.JSON(fiber.Map{"valid": len(issues) == 0, "issues": issues})
}

func (s *Server) query(c *fiber.Ctx) error {
	expression := c.Query("q")
	if expression == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing query parameter q")
	}
	doc, err := s.snapshot()
	if err != nil {
		return err
	}
	result, err := s.queries.Eval(expression, doc)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"result": result})
}

func (s *Server) state(c *fiber.Ctx) error {
	return c.JSON(s.store.State())
}

func (s *Server) page(c *fiber.Ctx) error {
	c.Set(fiber.HeaderETag, fmt.Sprintf(`W/"%d"`, s.Revision()))
	c.Type("html", "utf-8")

	if c.Query("print") != "" {
		html, err := s.printHTML()
		if err != nil {
			return err
		}
		return c.SendString(html)
	}

	doc, err := s.snapshot()
	if err != nil {
		return err
	}
	return render.HTML(c, doc, s.renderOptions(true))
}

// printHTML returns the read-only page, rendering it at most once per revision.
func (s *Server) printHTML() (string, error) {
	s.mu.Lock()
	cached, rev := s.printPage, s.revision
	s.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	doc, err := s.snapshot()
	if err != nil {
		return "", err
	}
	html, err := render.HTMLString(doc, s.renderOptions(false))
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.revision == rev {
		s.printPage = html
	}
	s.mu.Unlock()
	return html, nil
}

func (s *Server) pdf(c *fiber.Ctx) error {
	if s.printer == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "pdf export is disabled")
	}
	html, err := s.printHTML()
	if err != nil {
		return err
	}
	data, err := s.printer.PDF(c.UserContext(), html)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="cv.pdf"`)
	return c.Send(data)
}

func (s *Server) renderOptions(editable bool) render.Options {
	return render.Options{Translator: s.store.Translator(), Lang: s.lang, Editable: editable}
}

// snapshot decodes an exported copy, so readers never share maps with
// concurrent writers.
func (s *Server) snapshot() (core.Document, error) {
	data, err := s.store.Export()
	if err != nil {
		return nil, err
	}
	return core.Decode(data)
}

func pathParam(c *fiber.Ctx) (string, error) {
	path, err := url.PathUnescape(c.Params("path"))
	if err != nil || path == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid path")
	}
	return path, nil
}

func bodyRecord(c *fiber.Ctx) (core.Node, error) {
	value, err := core.DecodeValue(c.Body())
	if err != nil {
		return nil, err
	}
	record, ok := value.(core.Node)
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "body must be a JSON object")
	}
	return record, nil
}
