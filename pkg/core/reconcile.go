package core

// mergedRecords are the top-level singleton records merged field by field.
// Everything else is replaced wholesale.
var mergedRecords = map[string]bool{
	KeyPersonal: true,
	KeyContact:  true,
	KeySettings: true,
}

// Reconcile merges a loaded or imported document against the current defaults.
//
// Every top-level key of loaded overrides the default. personal, contact and
// settings are merged one level deep: loaded fields win, default fields fill
// the gaps, and fields unknown to the schema are kept. Collections and scalar
// keys are taken as-is; records inside a collection are never backfilled.
// A non-mapping value under a merged key is ignored and the default kept.
//
// Reconcile is idempotent.
func Reconcile(loaded Node, tr Translator) Document {
	defaults := NewDefault(tr)
	out := make(Document, len(defaults)+len(loaded))
	for k, v := range defaults {
		out[k] = v
	}

	for k, v := range loaded {
		if !mergedRecords[k] {
			out[k] = v
			continue
		}
		m, ok := v.(Node)
		if !ok {
			continue
		}
		out[k] = mergeShallow(defaults[k].(Node), m)
	}

	return out
}

func mergeShallow(base, override Node) Node {
	merged := make(Node, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
