// Package core holds the CV document model and the state engine that mutates it.
package core

import "fmt"

// Node is a keyed mapping inside the document tree.
// Nested mappings are always Node values; collections are []any of Node records.
type Node = map[string]any

// Document is the root of the CV tree.
type Document = Node

// Top-level document keys.
const (
	KeyVersion        = "version"
	KeyLastModified   = "lastModified"
	KeyPersonal       = "personal"
	KeyContact        = "contact"
	KeySummary        = "summary"
	KeyReferences     = "references"
	KeySettings       = "settings"
	KeySkills         = "skills"
	KeyLanguages      = "languages"
	KeyJobs           = "jobs"
	KeyEducation      = "education"
	KeyCertifications = "certifications"
	KeyHobbies        = "hobbies"
)

// IDField is the record field that identifies a record within its collection.
const IDField = "id"

// Collections lists the named collections in render order.
var Collections = []string{KeySkills, KeyLanguages, KeyJobs, KeyEducation, KeyCertifications, KeyHobbies}

// EventKind represents the type of change in the document.
type EventKind string

const (
	FieldChanged      EventKind = "FIELD_CHANGED"
	CollectionChanged EventKind = "COLLECTION_CHANGED"
	BulkReplaced      EventKind = "BULK_REPLACED"
)

// WildcardPath is the path carried by BulkReplaced events.
// It is not a real path: observers must re-render from scratch.
const WildcardPath = "*"

// Event represents a change in the document.
type Event struct {
	Kind      EventKind
	Path      string
	Value     any
	Document  Document
	Timestamp int64 // Unix milliseconds
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Kind, e.Path)
}

// Listener receives document change events.
// The Document carried by the event is live and must be treated as read-only.
type Listener func(Event)

// Translator resolves a dotted translation key to display text.
type Translator interface {
	T(key string) string
}

// TranslatorFunc adapts a plain function to the Translator interface.
type TranslatorFunc func(key string) string

// T implements Translator.
func (f TranslatorFunc) T(key string) string { return f(key) }
