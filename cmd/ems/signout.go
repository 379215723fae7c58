package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var signoutCmd = &cobra.Command{
	Use:     "signout",
	Aliases: []string{"logout"},
	Short:   "Remove the stored session",
	Long:    "Sign out of the EMS console by removing the stored session token.",
	Args:    cobra.NoArgs,
	RunE:    runSignout,
}

func init() {
	rootCmd.AddCommand(signoutCmd)
}

func runSignout(cmd *cobra.Command, args []string) error {
	c, _, err := newConsole(cmd)
	if err != nil {
		return err
	}

	if err := c.SignOut(); err != nil {
		return fmt.Errorf("sign-out failed: %w", err)
	}
	return nil
}
