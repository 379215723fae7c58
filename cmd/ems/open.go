package main

import (
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Navigate to a console page",
	Long:  "Navigate to a console page, for example /dashboard/employees or /dashboard/help. Protected pages require a valid session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newConsole(cmd)
		if err != nil {
			return err
		}
		_, err = c.Open(cmd.Context(), args[0])
		return err
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
