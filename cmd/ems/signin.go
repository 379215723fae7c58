package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// passwordReader reads a password without echo; tests replace it
var passwordReader = func() ([]byte, error) {
	return term.ReadPassword(int(syscall.Stdin))
}

var (
	signinEmail    string
	signinPassword string
)

var signinCmd = &cobra.Command{
	Use:     "signin",
	Aliases: []string{"login"},
	Short:   "Sign in to the EMS server",
	Long:    "Sign in to the EMS server and store the session token securely.",
	Args:    cobra.NoArgs,
	RunE:    runSignin,
}

func init() {
	signinCmd.Flags().StringVar(&signinEmail, "email", "", "Email address")
	signinCmd.Flags().StringVar(&signinPassword, "password", "", "Password (will prompt if not provided)")
	rootCmd.AddCommand(signinCmd)
}

func runSignin(cmd *cobra.Command, args []string) error {
	// Reset flags for reuse in tests
	defer func() {
		signinEmail = ""
		signinPassword = ""
	}()

	c, _, err := newConsole(cmd)
	if err != nil {
		return err
	}

	in := bufio.NewReader(cmd.InOrStdin())
	if signinEmail == "" {
		if signinEmail, err = promptLine(cmd.OutOrStdout(), in, "Email: "); err != nil {
			return err
		}
	}
	if signinPassword == "" {
		if signinPassword, err = promptPassword(cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	if err := c.SignIn(cmd.Context(), signinEmail, signinPassword); err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}
	return nil
}

func promptLine(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	b, err := passwordReader()
	fmt.Fprintln(out) // newline after password
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
