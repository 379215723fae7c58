package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	signupUsername string
	signupEmail    string
	signupPassword string
)

var signupCmd = &cobra.Command{
	Use:     "signup",
	Aliases: []string{"register"},
	Short:   "Create an account on the EMS server",
	Args:    cobra.NoArgs,
	RunE:    runSignup,
}

func init() {
	signupCmd.Flags().StringVar(&signupUsername, "username", "", "Username")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Email address")
	signupCmd.Flags().StringVar(&signupPassword, "password", "", "Password (will prompt if not provided)")
	rootCmd.AddCommand(signupCmd)
}

func runSignup(cmd *cobra.Command, args []string) error {
	defer func() {
		signupUsername = ""
		signupEmail = ""
		signupPassword = ""
	}()

	c, _, err := newConsole(cmd)
	if err != nil {
		return err
	}

	in := bufio.NewReader(cmd.InOrStdin())
	if signupUsername == "" {
		if signupUsername, err = promptLine(cmd.OutOrStdout(), in, "Username: "); err != nil {
			return err
		}
	}
	if signupEmail == "" {
		if signupEmail, err = promptLine(cmd.OutOrStdout(), in, "Email: "); err != nil {
			return err
		}
	}
	if signupPassword == "" {
		if signupPassword, err = promptPassword(cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	if err := c.SignUp(cmd.Context(), signupUsername, signupEmail, signupPassword); err != nil {
		return fmt.Errorf("sign-up failed: %w", err)
	}
	return nil
}
