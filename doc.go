// Package cvpro is the Composition Root for the cvpro CV editor.
//
// It connects the document state engine (pkg/core) with a storage backend
// chosen at open time: a JSON file that can be versioned with Git, an
// in-memory blob, or a PostgreSQL row.
//
// The store owns one CV document. Every edit addresses a dotted path
// ("personal.fullName", "jobs.job-1.title"), refreshes lastModified,
// notifies subscribers synchronously and schedules a debounced save.
//
// Usage:
//
//	ws, err := cvpro.Open(ctx, "./my-cv",
//		cvpro.WithAutoInit(true),
//		cvpro.WithLogger(logger),
//	)
//	defer ws.Close(ctx)
//
//	ws.Set("personal.fullName", "Ada Lovelace")
//	ws.Set("jobs.job-1.date", "1842 - 1843")
package cvpro
