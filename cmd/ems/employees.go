package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/umardevX/ems-console/internal/grid"
)

// fieldFlags maps command-line flags to employee fields
var fieldFlags = []struct {
	flag  string
	field string
	usage string
}{
	{"first-name", "firstName", "First name"},
	{"last-name", "lastName", "Last name"},
	{"email", "email", "Email address"},
	{"phone", "phoneNumber", "Phone number"},
	{"date-of-birth", "dateOfBirth", "Date of birth (YYYY-MM-DD)"},
	{"hire-date", "hireDate", "Hire date (YYYY-MM-DD)"},
	{"position", "position", "Position"},
	{"department", "department", "Department"},
	{"active", "isActive", "Active (yes/no)"},
}

func addFieldFlags(fs *pflag.FlagSet) {
	for _, f := range fieldFlags {
		fs.String(f.flag, "", f.usage)
	}
}

// changedFields collects the field flags given on the command line
func changedFields(fs *pflag.FlagSet) map[string]string {
	out := make(map[string]string)
	for _, f := range fieldFlags {
		if fs.Changed(f.flag) {
			v, _ := fs.GetString(f.flag)
			out[f.field] = v
		}
	}
	return out
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid employee id %q", s)
	}
	return id, nil
}

var employeesCmd = &cobra.Command{
	Use:     "employees",
	Aliases: []string{"emp"},
	Short:   "Manage employees",
}

var (
	listPage     int
	listPageSize int
)

var employeesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show a page of employees",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newConsole(cmd)
		if err != nil {
			return err
		}
		return c.ListEmployees(cmd.Context(), listPage, listPageSize)
	},
}

var employeesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an employee",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newConsole(cmd)
		if err != nil {
			return err
		}
		return c.AddEmployee(cmd.Context(), changedFields(cmd.Flags()))
	},
}

var employeesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		fields := changedFields(cmd.Flags())
		if len(fields) == 0 {
			return fmt.Errorf("nothing to change: pass at least one field flag")
		}

		c, _, err := newConsole(cmd)
		if err != nil {
			return err
		}
		return c.EditEmployee(cmd.Context(), id, fields)
	},
}

var employeesDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an employee",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		c, _, err := newConsole(cmd)
		if err != nil {
			return err
		}
		return c.DeleteEmployee(cmd.Context(), id)
	},
}

var (
	exportFormat string
	exportOutput string
)

var employeesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all employees to CSV or XLSX",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFormat != grid.FormatCSV && exportFormat != grid.FormatXLSX {
			return fmt.Errorf("unsupported export format %q (use csv or xlsx)", exportFormat)
		}

		c, _, err := newConsole(cmd)
		if err != nil {
			return err
		}

		if exportOutput == "" || exportOutput == "-" {
			return c.ExportEmployees(cmd.Context(), cmd.OutOrStdout(), exportFormat)
		}

		f, err := os.OpenFile(exportOutput, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOutput, err)
		}
		if err := c.ExportEmployees(cmd.Context(), f, exportFormat); err != nil {
			_ = f.Close()
			_ = os.Remove(exportOutput)
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutput, err)
		}
		cmd.Printf("Exported %d employees to %s\n", c.Repository().Len(), exportOutput)
		return nil
	},
}

func init() {
	employeesListCmd.Flags().IntVar(&listPage, "page", 0, "Page number, starting at 1")
	employeesListCmd.Flags().IntVar(&listPageSize, "page-size", 0, "Rows per page (5, 10, 25 or 50)")

	addFieldFlags(employeesAddCmd.Flags())
	addFieldFlags(employeesEditCmd.Flags())

	employeesExportCmd.Flags().StringVar(&exportFormat, "format", grid.FormatCSV, "Export format (csv or xlsx)")
	employeesExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")

	employeesCmd.AddCommand(employeesListCmd, employeesAddCmd, employeesEditCmd, employeesDeleteCmd, employeesExportCmd)
	rootCmd.AddCommand(employeesCmd)
}
