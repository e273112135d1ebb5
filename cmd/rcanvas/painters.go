package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rcanvas/internal/demo"
)

func paintersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "painters",
		Short: "List the built-in painters",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range demo.Names() {
				marker := " "
				if name == demo.DefaultName {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
		},
	}
}
