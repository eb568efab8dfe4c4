package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasksage/tasksage"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tasksage",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tasksage version %s\n", strings.TrimSpace(tasksage.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
