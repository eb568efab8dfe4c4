package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasksage/tasksage/pkg/core"
	"github.com/tasksage/tasksage/pkg/engine"
	"github.com/tasksage/tasksage/pkg/forms"
)

var (
	taskDesc     string
	taskCategory string
	taskPriority string
	taskDue      string
	taskTags     string
	taskTemplate string

	taskStatus   string
	taskSearch   string
	taskSort     string
	taskFilterPr string
	taskJSON     bool
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		form := forms.TaskForm{
			Title:       args[0],
			Description: taskDesc,
			Category:    taskCategory,
			Priority:    core.ParsePriority(taskPriority),
			Tags:        taskTags,
		}
		if taskTemplate != "" {
			if !form.ApplyTemplate(taskTemplate) {
				fatal("Unknown template", fmt.Errorf("%q", taskTemplate))
			}
			form.Title = args[0]
		}
		if taskDue != "" {
			due, err := time.Parse("2006-01-02", taskDue)
			if err != nil {
				fatal("Invalid due date (want YYYY-MM-DD)", err)
			}
			form.DueDate = &due
		}

		app := openApp()
		defer app.Close()

		if err := form.Validate(); err != nil {
			fatal("Invalid task", err)
		}
		id, err := app.Service.CreateTask(context.Background(), owner, form.Draft())
		if err != nil {
			fatal("Error creating task", err)
		}
		fmt.Println(id)
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks with filters applied",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		ctx := context.Background()
		tasks := core.TasksFromRecords(fetch(ctx, app.Store, core.CollectionTasks))

		q := engine.TaskQuery{
			Search:   taskSearch,
			Status:   engine.Status(taskStatus),
			Priority: core.Priority(taskFilterPr),
			Sort:     engine.SortKey(taskSort),
		}
		tasks = engine.FilterTasks(tasks, q, time.Now())
		tasks = engine.SortTasks(tasks, q.Sort)

		if taskJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(tasks); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, t := range tasks {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			line := fmt.Sprintf("[%s] %s  %s (%s)", mark, t.ID, t.Title, t.Priority)
			if t.DueDate != nil {
				line += "  due " + t.DueDate.Format("2006-01-02")
			}
			if len(t.Tags) > 0 {
				line += "  #" + strings.Join(t.Tags, " #")
			}
			fmt.Println(line)
		}
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		toggleTask(args[0], true)
	},
}

var taskUndoneCmd = &cobra.Command{
	Use:   "undone <id>",
	Short: "Revert a task to pending",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		toggleTask(args[0], false)
	},
}

func toggleTask(id string, completed bool) {
	app := openApp()
	defer app.Close()

	if err := app.Service.ToggleTaskComplete(context.Background(), id, completed); err != nil {
		fatal("Error updating task", err)
	}
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		if err := app.Service.DeleteTask(context.Background(), args[0]); err != nil {
			fatal("Error deleting task", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskDoneCmd, taskUndoneCmd, taskRmCmd)

	taskAddCmd.Flags().StringVar(&taskDesc, "desc", "", "Task description")
	taskAddCmd.Flags().StringVar(&taskCategory, "category", "", "Task category")
	taskAddCmd.Flags().StringVar(&taskPriority, "priority", "medium", "Priority (low|medium|high)")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
	taskAddCmd.Flags().StringVar(&taskTags, "tags", "", "Comma-separated tags")
	taskAddCmd.Flags().StringVar(&taskTemplate, "template", "", "Start from a template (project|meeting|bug|review)")

	taskListCmd.Flags().StringVar(&taskStatus, "status", "all", "Filter by status (all|completed|pending|overdue)")
	taskListCmd.Flags().StringVar(&taskFilterPr, "priority", "", "Filter by priority (low|medium|high)")
	taskListCmd.Flags().StringVar(&taskSearch, "search", "", "Search term")
	taskListCmd.Flags().StringVar(&taskSort, "sort", "created", "Sort key (created|dueDate|priority|title)")
	taskListCmd.Flags().BoolVar(&taskJSON, "json", false, "Output in JSON format")
}
