package tasksage_test

import (
	"context"
	"fmt"
	"log"

	"github.com/tasksage/tasksage"
	"github.com/tasksage/tasksage/pkg/core"
	"github.com/tasksage/tasksage/pkg/engine"
)

// Example_basic demonstrates creating a task and reading the derived stats.
func Example_basic() {
	// The in-memory adapter needs no directory; production code would point
	// the default "fs" adapter at a data directory instead.
	app, err := tasksage.New("", tasksage.WithAdapter("mem"))
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	ctx := context.Background()

	// 1. Create a task
	_, err = app.Service.CreateTask(ctx, "alice", core.TaskDraft{
		Title:    "Write the launch announcement",
		Priority: core.PriorityHigh,
		Tags:     []string{"launch"},
	})
	if err != nil {
		log.Fatal(err)
	}

	// 2. Bind a view engine to the same identity and wait for the first view
	eng := tasksage.NewEngine(app.Store)
	defer eng.Close()
	if err := eng.Bind(ctx, "alice"); err != nil {
		log.Fatal(err)
	}

	var view engine.View
	for view = range eng.Updates() {
		if view.Stats.TotalTasks == 1 {
			break
		}
	}

	fmt.Printf("Pending tasks: %d\n", view.Stats.PendingTasks)
	// Output:
	// Pending tasks: 1
}

// ExampleSummarize demonstrates the deterministic extractive summarizer.
func ExampleSummarize() {
	result := tasksage.Summarize("Too short to need a summary. Honestly just a couple of lines. Nothing more to compress here.")
	fmt.Println(result.Summary)
	// Output:
	// Text is already concise. No summarization needed.
}
