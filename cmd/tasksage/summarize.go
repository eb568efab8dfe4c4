package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tasksage/tasksage/pkg/summarize"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Produce an extractive summary of a text file (or stdin)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var data []byte
		var err error
		if len(args) == 1 && args[0] != "-" {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			fatal("Error reading input", err)
		}

		result := summarize.Summarize(string(data))
		if result.Concise {
			fmt.Println(summarize.ConciseMessage)
			return
		}
		fmt.Print(result.Summary)
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
