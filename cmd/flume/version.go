package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/flume"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flume",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("flume version %s\n", flume.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
