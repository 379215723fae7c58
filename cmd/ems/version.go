package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/umardevX/ems-console/internal/api"
	"github.com/umardevX/ems-console/internal/config"
)

var versionServer bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version number of the EMS console, and optionally of the server it talks to",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("ems version %s\n", version)
		if !versionServer {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		health, err := api.NewClient(cfg.Server.URL, api.WithTimeout(cfg.Server.Timeout)).Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to reach server: %w", err)
		}
		cmd.Printf("server %s version %s (%s)\n", health.Service, health.Version, health.Status)

		if msg := compatibility(version, health.Version); msg != "" {
			cmd.Println(msg)
		}
		return nil
	},
}

// compatibility warns when console and server major versions differ
func compatibility(client, server string) string {
	cv, sv := "v"+client, "v"+server
	if !semver.IsValid(sv) {
		return fmt.Sprintf("Warning: server reported an unrecognised version %q", server)
	}
	if semver.Major(cv) != semver.Major(sv) {
		return fmt.Sprintf("Warning: console %s and server %s are not compatible", client, server)
	}
	if semver.Compare(cv, sv) < 0 {
		return fmt.Sprintf("A newer console may be available (server is %s)", server)
	}
	return ""
}

func init() {
	versionCmd.Flags().BoolVar(&versionServer, "server", false, "Also query the server version")
	rootCmd.AddCommand(versionCmd)
}
