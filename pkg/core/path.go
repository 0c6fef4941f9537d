package core

import "strings"

// PathSeparator separates path segments ("jobs.job-1.title").
const PathSeparator = "."

// DateAlias is the synthetic final segment that addresses a record's
// startDate/endDate pair as one "start - end" string.
const DateAlias = "date"

// SplitPath splits a dotted path into segments.
func SplitPath(path string) []string {
	return strings.Split(path, PathSeparator)
}

// Resolve walks path for writing and returns the node that owns the final
// segment together with that segment, uninterpreted.
//
// At a collection a segment is matched against record ids; at a mapping it is
// a key, and an absent (or nil) key is created as an empty mapping. The walk
// cannot continue through a scalar or through a collection with no matching
// record; container is nil in that case.
func Resolve(root Node, path string) (container any, key string) {
	keys := SplitPath(path)
	var current any = root

	for _, segment := range keys[:len(keys)-1] {
		// Collections first: a segment that names a record wins over any key.
		if coll, ok := current.([]any); ok {
			record, _, found := findRecord(coll, segment)
			if !found {
				return nil, keys[len(keys)-1]
			}
			current = record
			continue
		}

		m, ok := current.(Node)
		if !ok {
			return nil, keys[len(keys)-1]
		}
		next, exists := m[segment]
		if !exists || next == nil {
			next = Node{}
			m[segment] = next
		}
		current = next
	}

	switch current.(type) {
	case Node, []any:
		return current, keys[len(keys)-1]
	}
	return nil, keys[len(keys)-1]
}

// Lookup walks path for reading. It never creates nodes and reports false as
// soon as any step is absent, nil, or not traversable.
func Lookup(root Node, path string) (any, bool) {
	var current any = root
	for _, segment := range SplitPath(path) {
		switch node := current.(type) {
		case []any:
			record, _, found := findRecord(node, segment)
			if !found {
				return nil, false
			}
			current = record
		case Node:
			v, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}
	return current, true
}

// RecordID returns the id of a collection record.
func RecordID(record any) (string, bool) {
	m, ok := record.(Node)
	if !ok {
		return "", false
	}
	id, ok := m[IDField].(string)
	return id, ok
}

func findRecord(coll []any, id string) (Node, int, bool) {
	for i, item := range coll {
		if recordID, ok := RecordID(item); ok && recordID == id {
			return item.(Node), i, true
		}
	}
	return nil, -1, false
}
