// Package validate checks a CV document against its JSON schema.
package validate

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/aretw0/cvpro/pkg/core"
)

//go:embed cv.schema.json
var schemaJSON []byte

var compiled = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Schema returns the raw JSON schema.
func Schema() []byte {
	return schemaJSON
}

// Issue is one schema violation.
type Issue struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func (i Issue) String() string {
	return i.Field + ": " + i.Description
}

// Document validates doc. It returns the violations, sorted as reported by
// the validator, and an error only when validation itself could not run.
func Document(doc core.Document) ([]Issue, error) {
	schema, err := compiled()
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	res, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to validate document: %w", err)
	}
	if res.Valid() {
		return nil, nil
	}

	issues := make([]Issue, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		issues = append(issues, Issue{Field: e.Field(), Description: e.Description()})
	}
	return issues, nil
}

// Check validates doc and folds the violations into one error.
func Check(doc core.Document) error {
	issues, err := Document(doc)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		return nil
	}
	msgs := make([]string, len(issues))
	for i, issue := range issues {
		msgs[i] = issue.String()
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
