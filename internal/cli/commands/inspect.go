package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fmacia/subclass-ide-helper/internal/cli/ui"
	"github.com/fmacia/subclass-ide-helper/internal/generator"
	"github.com/fmacia/subclass-ide-helper/internal/registry"
)

// Bundle statuses reported by inspect
const (
	StatusGenerated = "generated"
	StatusExcluded  = "excluded"
	StatusNoClass   = "no class"
	StatusNoFields  = "no fields"
)

// BundleReport describes what generate would do with one bundle
type BundleReport struct {
	EntityType string `json:"entity_type"`
	Bundle     string `json:"bundle"`
	Class      string `json:"class,omitempty"`
	Fields     int    `json:"fields"`
	Status     string `json:"status"`
}

type inspectOptions struct {
	excludedClasses string
	format          string
}

func newInspectCommand(global *globalOptions) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect [entity_types]",
		Short: "Show which bundles would get a stub class",
		Long: `List the bundles of the given entity types with their class and the number
of configurable fields that would be annotated.

Bundles without a class and excluded classes are listed with their status;
their fields are not looked up.`,
		Example: `  # Bundles of node and taxonomy_term
  sih inspect node,taxonomy_term

  # JSON output for tooling
  sih inspect --format json`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: entityTypeCompletion(global),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.excludedClasses, "excluded-classes", "", "Comma separated class names to skip")
	cmd.Flags().StringVar(&opts.format, "format", "table", "Output format: json or table")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string, global *globalOptions, opts *inspectOptions) error {
	if opts.format != "table" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q (expected table or json)", opts.format)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	noColor := global.noColor

	cfg, err := global.loadConfig(cmd)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), noColor))
		return reported(err)
	}

	entityTypes := cfg.EntityTypes
	if len(args) > 0 {
		entityTypes = args[0]
	}

	src, closeSource, err := registry.Open(ctx, cfg.Source)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.SourceError(err.Error(), noColor))
		return reported(err)
	}
	defer closeSource()

	entityTypeList := generator.SplitList(entityTypes)
	warnUnknownEntityTypes(cmd, src, entityTypeList, noColor)

	reports, err := inspectBundles(ctx, src, entityTypeList, generator.SplitList(cfg.ExcludedClasses))
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.SourceError(err.Error(), noColor))
		return reported(err)
	}

	if opts.format == "json" {
		return writeReportsJSON(cmd.OutOrStdout(), reports)
	}
	writeReportsTable(cmd.OutOrStdout(), reports, noColor)
	return nil
}

// inspectBundles mirrors the bundle selection of the generator without
// rendering anything.
func inspectBundles(ctx context.Context, src registry.Source, entityTypes, excludedClasses []string) ([]BundleReport, error) {
	excluded := generator.NewClassSet(excludedClasses)

	reports := make([]BundleReport, 0)
	for _, entityType := range entityTypes {
		bundles, err := src.BundleInfo(ctx, entityType)
		if err != nil {
			return nil, fmt.Errorf("failed to list bundles of %q: %w", entityType, err)
		}

		for _, b := range bundles {
			report := BundleReport{EntityType: entityType, Bundle: b.Name, Class: b.Class}

			if !b.HasClass() {
				report.Status = StatusNoClass
				reports = append(reports, report)
				continue
			}

			if excluded.Excludes(b.Class) {
				report.Status = StatusExcluded
				reports = append(reports, report)
				continue
			}

			defs, err := src.FieldDefinitions(ctx, entityType, b.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to list fields of %s.%s: %w", entityType, b.Name, err)
			}
			for _, def := range defs {
				if _, ok := def.(registry.ConfigurableField); ok {
					report.Fields++
				}
			}

			report.Status = StatusGenerated
			if report.Fields == 0 {
				report.Status = StatusNoFields
			}
			reports = append(reports, report)
		}
	}
	return reports, nil
}

func writeReportsJSON(w io.Writer, reports []BundleReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reports)
}

func writeReportsTable(w io.Writer, reports []BundleReport, noColor bool) {
	if len(reports) == 0 {
		fmt.Fprint(w, ui.Info("No bundles found", noColor))
		return
	}

	ui.Header(w, "Subclassed bundles", noColor)

	generated := 0
	table := ui.NewTable(w, []string{"ENTITY TYPE", "BUNDLE", "CLASS", "FIELDS", "STATUS"}, noColor)
	for _, r := range reports {
		class := r.Class
		if class == "" {
			class = "-"
		}
		if r.Status == StatusGenerated {
			generated++
		}
		table.AddRow(r.EntityType, r.Bundle, class, strconv.Itoa(r.Fields), r.Status)
	}
	table.Render()

	fmt.Fprintf(w, "\n%d bundle(s), %d with a stub class\n", table.Len(), generated)
}
