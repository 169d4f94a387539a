package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/formstate/internal/version"
)

var (
	versionFormat   string
	versionShort    bool
	versionDetailed bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for formstate: version, commit, build time,
Go version and platform.

Examples:
  formstate version              # Show version and commit
  formstate version --detailed   # Show detailed version info
  formstate version --format json`,
	Args: cobra.NoArgs,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json, yaml)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "Show detailed version information")
}

func runVersionCommand(cmd *cobra.Command, _ []string) error {
	return writeVersion(cmd.OutOrStdout(), version.Get())
}

func writeVersion(w io.Writer, info *version.BuildInfo) error {
	switch versionFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "yaml":
		return yaml.NewEncoder(w).Encode(info)
	case "text":
		switch {
		case versionShort:
			fmt.Fprintln(w, info.Short())
		case versionDetailed:
			fmt.Fprintln(w, info.Detailed())
		default:
			line := "formstate " + info.Short()
			if info.Dirty {
				line += " (dirty)"
			}
			fmt.Fprintln(w, line)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", versionFormat)
	}
}
