package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/umardevX/ems-console/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := newConsole(cmd)
		if err != nil {
			return err
		}

		verdict, claims := c.Status()
		cmd.Printf("Server:  %s\n", cfg.Server.URL)
		cmd.Printf("Session: %s\n", verdict)
		if claims == nil {
			return nil
		}
		if claims.Email != "" {
			cmd.Printf("User:    %s\n", claims.Email)
		}
		if claims.ExpiresAt != nil {
			if verdict == session.Valid {
				cmd.Printf("Expires: %s (in %s)\n", claims.ExpiresAt.Local().Format(time.RFC1123), time.Until(*claims.ExpiresAt).Round(time.Second))
			} else {
				cmd.Printf("Expired: %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
