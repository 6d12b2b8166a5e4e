package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"instance-doctor/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "doctor %s\n", version.String())
			return nil
		},
	}
}
