package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/umardevX/ems-console/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  "View and update EMS console configuration settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long:  "Display the current effective configuration including environment variable overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		cmd.Printf("Server:\n")
		cmd.Printf("  URL: %s\n", cfg.Server.URL)
		cmd.Printf("  Timeout: %s\n", cfg.Server.Timeout)
		cmd.Printf("\n")
		cmd.Printf("Session:\n")
		cmd.Printf("  Storage: %s\n", cfg.Session.Storage)
		if cfg.Session.Storage == config.StorageFile {
			cmd.Printf("  File: %s\n", cfg.Session.File)
		}
		cmd.Printf("\n")
		cmd.Printf("Logging:\n")
		cmd.Printf("  Level: %s\n", cfg.Logging.Level)
		cmd.Printf("  File: %s\n", cfg.Logging.File)
		cmd.Printf("\n")
		cmd.Printf("Grid:\n")
		cmd.Printf("  Page size: %d\n", cfg.Grid.PageSize)

		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:               "set <key> <value>",
	Short:             "Update configuration value",
	Long:              "Update a configuration value in the config file. Example: ems config set server.url https://ems.example.com",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: configKeyCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		parts := strings.Split(key, ".")
		if len(parts) != 2 {
			return fmt.Errorf("invalid key format. Expected format: section.field (e.g., server.url)")
		}

		section := parts[0]
		field := parts[1]

		switch section {
		case "server":
			switch field {
			case "url":
				cfg.Server.URL = value
			case "timeout":
				d, err := time.ParseDuration(value)
				if err != nil || d <= 0 {
					return fmt.Errorf("invalid timeout %q: use a duration such as 10s", value)
				}
				cfg.Server.Timeout = d
			default:
				return fmt.Errorf("unknown server field: %s", field)
			}
		case "session":
			switch field {
			case "storage":
				cfg.Session.Storage = value
			case "file":
				cfg.Session.File = value
			default:
				return fmt.Errorf("unknown session field: %s", field)
			}
		case "logging":
			switch field {
			case "level":
				cfg.Logging.Level = value
			case "file":
				cfg.Logging.File = value
			default:
				return fmt.Errorf("unknown logging field: %s", field)
			}
		case "grid":
			switch field {
			case "page_size":
				n, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("invalid page size %q", value)
				}
				cfg.Grid.PageSize = n
			default:
				return fmt.Errorf("unknown grid field: %s", field)
			}
		default:
			return fmt.Errorf("unknown config section: %s", section)
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		cmd.Printf("Updated %s to: %s\n", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configKeyCompletion provides tab completion for config keys
func configKeyCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) >= 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	validKeys := []string{
		"server.url\tEMS server URL",
		"server.timeout\tRequest timeout (e.g. 10s)",
		"session.storage\tWhere the session token is kept (keychain, file)",
		"session.file\tSession file used when storage is file",
		"logging.level\tLogging level (debug, info, warn, error)",
		"logging.file\tDiagnostics log file",
		"grid.page_size\tDefault rows per page (5, 10, 25, 50)",
	}

	return validKeys, cobra.ShellCompDirectiveNoFileComp
}
