// Package tasksage is the Composition Root for the TaskSage application.
//
// It connects the core business logic (Domain Layer) with the infrastructure
// adapters (Persistence Layer) using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// TaskSage treats tasks and notes as plain records in a schemaless document
// store and keeps every derived number and ordering (stats, filters, sorts,
// recent slices) computed locally from live snapshots. The core is agnostic
// of the storage mechanism; the default adapters are the local filesystem
// (Markdown files with YAML frontmatter) and an in-memory store.
//
// Features:
//
//   - **Hexagonal Architecture**: Core domain is isolated from persistence details.
//   - **Live Views**: Subscriptions deliver latest-wins snapshots; the engine
//     folds them into a single consistent View.
//   - **Derived State**: Stats, filtering, sorting and recent slices are pure
//     reducers over snapshots, never stored.
//   - **Extractive Summaries**: A deterministic heuristic summarizer with no
//     model or network dependency.
//   - **Default Adapter (FS)**: Markdown files with frontmatter, watched for
//     external edits via fsnotify.
//
// Usage:
//
//	// Initialize the app with functional options
//	app, err := tasksage.New("./data",
//		tasksage.WithLogger(logger),
//	)
//
//	// Create a task
//	id, err := app.Service.CreateTask(ctx, owner, core.TaskDraft{Title: "Ship it"})
package tasksage
