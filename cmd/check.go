package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/formstate/internal/config"
	"github.com/conneroisu/formstate/internal/definition"
	formerrors "github.com/conneroisu/formstate/internal/errors"
	"github.com/conneroisu/formstate/internal/logging"
)

var checkCmd = &cobra.Command{
	Use:     "check [data-file...]",
	Aliases: []string{"c"},
	Short:   "Check data documents against a field definition",
	Long: `Bind the fields of a definition file to a form, seed it with each data
document, flush the fields' initial values and submit. Field errors and the
form error are printed; the command fails when any document is invalid.

Examples:
  formstate check -d signup.yml data.yml        # Table output
  formstate check -d signup.yml a.yml b.json    # Several documents
  formstate check -d signup.yml data.yml -o json
  formstate check -d signup.yml data.yml --dump # Dump the checked tree`,
	Args: cobra.MatchAll(cobra.MinimumNArgs(1), existingFiles),
	RunE: runCheck,
}

var (
	checkDefinition string
	checkFlags      *OutputFlags
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkDefinition, "definition", "d", "form.yml", "Field definition file")
	checkFlags = AddOutputFlags(checkCmd)
}

func existingFiles(_ *cobra.Command, args []string) error {
	for _, arg := range args {
		if err := ValidateFileExists(arg); err != nil {
			return err
		}
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	reports, loadErr := checkFiles(commandContext(cmd), cfg, logger, checkDefinition, args)
	if len(reports) == 0 {
		return loadErr
	}

	out := cmd.OutOrStdout()
	if err := writeReports(out, checkFlags.Resolve(cfg), reports); err != nil {
		return err
	}
	if checkFlags.Dump {
		dumpReports(out, reports)
	}

	return formerrors.CombineErrors(loadErr, reportsError(reports))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// fileReport is the check report of one data file.
type fileReport struct {
	File              string `json:"file" yaml:"file"`
	definition.Report `yaml:",inline"`
}

// checkFiles loads the definition and checks every data file against it.
// Files that cannot be read are skipped and their errors combined.
func checkFiles(ctx context.Context, cfg *config.Config, logger logging.Logger, defPath string, dataPaths []string) ([]fileReport, error) {
	def, err := definition.Load(defPath)
	if err != nil {
		return nil, err
	}

	opts := definition.CheckOptions{
		Messages:  cfg.ErrorMessages(),
		Logger:    logger,
		Scheduler: cfg.Scheduler(),
	}

	reports := make([]fileReport, 0, len(dataPaths))
	var errs []error
	for _, path := range dataPaths {
		data, err := definition.LoadData(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		report := definition.Check(def, data, opts)
		logger.Debug(ctx, "Checked document", "file", path, "form_id", report.FormID, "valid", report.Valid)
		reports = append(reports, fileReport{File: path, Report: *report})
	}
	return reports, formerrors.CombineErrors(errs...)
}

// reportsError collects the failing fields of all reports.
func reportsError(reports []fileReport) error {
	collector := formerrors.NewErrorCollector()
	for _, r := range reports {
		for _, issue := range r.Issues {
			issue.Scope = r.File + ":" + issue.Scope
			collector.Add(issue)
		}
	}
	if !collector.HasErrors() {
		return nil
	}
	return collector.Validation().ToFormError()
}

func writeReports(w io.Writer, format string, reports []fileReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(reports)
	default:
		return writeReportTable(w, reports)
	}
}

func writeReportTable(w io.Writer, reports []fileReport) error {
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		status := "valid"
		if !r.Valid {
			status = "invalid"
		}
		fmt.Fprintf(w, "%s (%s): %s\n", r.File, r.Form, status)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FIELD\tLABEL\tSTATUS\tMESSAGE")
		for _, f := range r.Fields {
			rule := "ok"
			if !f.Valid() {
				rule = f.Rule
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Label, rule, f.Message)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if r.Error != "" {
			fmt.Fprintf(w, "error: %s\n", r.Error)
		}
	}
	return nil
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

func dumpReports(w io.Writer, reports []fileReport) {
	for _, r := range reports {
		fmt.Fprintf(w, "--- %s\n", r.File)
		dumpConfig.Fdump(w, r.Data)
	}
}
