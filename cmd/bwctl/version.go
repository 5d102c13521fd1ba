package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pg-sharding/batchwrite/pkg"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print bwctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bwctl %s\n", pkg.VersionRevision)
	},
}
