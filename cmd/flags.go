package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conneroisu/formstate/internal/config"
)

var outputFormats = []string{"table", "json", "yaml"}

// OutputFlags are the output flags shared by check and watch.
type OutputFlags struct {
	Format string
	Dump   bool
}

// AddOutputFlags adds -o/--output and --dump to a command.
func AddOutputFlags(cmd *cobra.Command) *OutputFlags {
	flags := &OutputFlags{}
	cmd.Flags().StringVarP(&flags.Format, "output", "o", "", "Output format (table|json|yaml), defaults to output.format")
	cmd.Flags().BoolVar(&flags.Dump, "dump", false, "Dump the checked value tree")

	AddFlagValidation(cmd, "output", func(format string) error {
		return ValidateFormat(format, outputFormats)
	})
	return flags
}

// Resolve returns the flag value, or the configured format when the flag
// was left empty.
func (f *OutputFlags) Resolve(cfg *config.Config) string {
	if f.Format != "" {
		return strings.ToLower(f.Format)
	}
	return cfg.Output.Format
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidateFormat accepts an empty format or one of valid, and suggests the
// closest match otherwise.
func ValidateFormat(format string, valid []string) error {
	if format == "" || slices.Contains(valid, strings.ToLower(format)) {
		return nil
	}
	for _, v := range valid {
		if strings.HasPrefix(v, strings.ToLower(format)) {
			return fmt.Errorf("invalid format %q, did you mean %q?", format, v)
		}
	}
	return fmt.Errorf("invalid format %q, must be one of: %s", format, strings.Join(valid, ", "))
}

// ValidateFileExists fails for a path that does not exist
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}
