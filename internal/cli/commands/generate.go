package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fmacia/subclass-ide-helper/internal/cli/config"
	"github.com/fmacia/subclass-ide-helper/internal/cli/ui"
	"github.com/fmacia/subclass-ide-helper/internal/generator"
	"github.com/fmacia/subclass-ide-helper/internal/output"
	"github.com/fmacia/subclass-ide-helper/internal/registry"
	"github.com/fmacia/subclass-ide-helper/internal/render"
	"github.com/fmacia/subclass-ide-helper/internal/typeddata"
	"github.com/fmacia/subclass-ide-helper/internal/watch"
)

type generateOptions struct {
	resultFile      string
	excludedClasses string
	template        string
	stdout          bool
	interactive     bool
	watch           bool
}

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	return newGenerateCommand(&globalOptions{})
}

func newGenerateCommand(global *globalOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:     "generate [entity_types]",
		Aliases: []string{"gen", "sih"},
		Short:   "Generate the subclassed bundles IDE helper file",
		Long: `Generate a PHP stub file with @property annotations for every bundle that
is backed by its own class.

entity_types is a comma separated list of entity type ids (default: node).
Only configurable fields are annotated. Optional fields get a |null marker.

The file is written to ../` + output.DefaultFilename + ` unless --result-file
is given. A failure to save the file is reported but does not fail the command.`,
		Example: `  # Stubs for node bundles, written one directory up
  sih generate

  # Several entity types, skipping two classes
  sih generate node,taxonomy_term --excluded-classes "Page, Tag"

  # Read metadata from a PostgreSQL snapshot and print the result
  sih generate --source database --dsn postgres://localhost/site --stdout

  # Keep the stub file in sync while editing the manifest
  sih generate --watch`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: entityTypeCompletion(global),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.resultFile, "result-file", "", "Output path (default: ../"+output.DefaultFilename+")")
	cmd.Flags().StringVar(&opts.excludedClasses, "excluded-classes", "", "Comma separated class names to skip")
	cmd.Flags().StringVar(&opts.template, "template", "", "Custom stub template file")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Print the stub file instead of writing it")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for entity types and excluded classes")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Regenerate whenever the manifest, template or config file changes")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, global *globalOptions, opts *generateOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := global.logger(cmd)
	defer logger.Sync()

	run := &generateRun{
		cmd:    cmd,
		global: global,
		logger: logger,
		stdout: opts.stdout,
	}

	cfg, err := run.config()
	if err != nil {
		return err
	}

	if len(args) > 0 {
		run.entityTypes = &args[0]
	}

	if opts.interactive {
		entityTypes, excluded := run.lists(cfg)
		entityTypesAnswer := generator.JoinList(entityTypes)
		excludedAnswer := generator.JoinList(excluded)
		if err := promptLists(&entityTypesAnswer, &excludedAnswer); err != nil {
			return err
		}
		run.entityTypes = &entityTypesAnswer
		run.excluded = &excludedAnswer
	}

	if opts.watch {
		return run.watch(ctx, cfg)
	}
	return run.generate(ctx, cfg)
}

// generateRun is one invocation of generate. Every run reloads the
// configuration and reopens the source, so nothing is carried over between
// runs except the command line itself.
type generateRun struct {
	cmd    *cobra.Command
	global *globalOptions
	logger *zap.Logger
	stdout bool

	// entityTypes and excluded override the configuration when set, from
	// the positional argument or the interactive prompt
	entityTypes *string
	excluded    *string
}

// config loads the current configuration, reporting failures.
func (r *generateRun) config() (*config.Config, error) {
	cfg, err := r.global.loadConfig(r.cmd)
	if err != nil {
		fmt.Fprint(r.cmd.ErrOrStderr(), ui.ConfigError(err.Error(), r.global.noColor))
		return nil, reported(err)
	}
	return cfg, nil
}

// lists returns the entity types and excluded classes of a run.
func (r *generateRun) lists(cfg *config.Config) (entityTypes, excluded []string) {
	entityTypesRaw := cfg.EntityTypes
	if r.entityTypes != nil {
		entityTypesRaw = *r.entityTypes
	}
	excludedRaw := cfg.ExcludedClasses
	if r.excluded != nil {
		excludedRaw = *r.excluded
	}
	return generator.SplitList(entityTypesRaw), generator.SplitList(excludedRaw)
}

// once reloads the configuration and generates.
func (r *generateRun) once(ctx context.Context) error {
	cfg, err := r.config()
	if err != nil {
		return err
	}
	return r.generate(ctx, cfg)
}

func (r *generateRun) generate(ctx context.Context, cfg *config.Config) error {
	noColor := r.global.noColor
	stderr := r.cmd.ErrOrStderr()

	src, closeSource, err := registry.Open(ctx, cfg.Source)
	if err != nil {
		fmt.Fprint(stderr, ui.SourceError(err.Error(), noColor))
		return reported(err)
	}
	defer closeSource()

	entityTypes, excluded := r.lists(cfg)
	warnUnknownEntityTypes(r.cmd, src, entityTypes, noColor)

	gen := generator.New(src,
		generator.WithFactory(newTypedDataManager(cfg)),
		generator.WithLogger(r.logger),
	)
	group, err := gen.Generate(ctx, entityTypes, excluded)
	if err != nil {
		fmt.Fprint(stderr, ui.SourceError(err.Error(), noColor))
		return reported(err)
	}

	renderOpts := []render.Option{}
	if cfg.Template != "" {
		renderOpts = append(renderOpts, render.WithTemplateFile(cfg.Template))
	}
	renderer, err := render.New(renderOpts...)
	if err != nil {
		return err
	}

	document, err := renderer.Render(group)
	if err != nil {
		return err
	}

	if r.stdout {
		_, err := r.cmd.OutOrStdout().Write(document)
		return err
	}

	path, err := output.NewWriter(r.global.fs).Write(cfg.ResultFile, document)
	if err != nil {
		// Saving is the last step; report it without failing the command.
		r.logger.Warn("failed to save stub file", zap.String("path", path), zap.Error(err))
		fmt.Fprint(stderr, ui.SaveError(path, err, noColor))
		return nil
	}

	r.logger.Debug("saved stub file",
		zap.String("path", path),
		zap.Int("classes", group.ClassCount()),
		zap.Int("bytes", len(document)),
	)
	ui.WriteSuccess(r.cmd.OutOrStdout(), ui.SavedMessage(path), noColor)
	return nil
}

// watchedFiles lists the local inputs of cfg: the config file that was read
// (given with --config or discovered), the template and the manifest.
func watchedFiles(cfg *config.Config) []string {
	files := []string{cfg.File, cfg.Template}
	if cfg.Source.Kind == "" || cfg.Source.Kind == registry.KindManifest {
		files = append(files, cfg.Source.Manifest)
	}
	return files
}

// watch generates with cfg, then again after every change to the files cfg
// names until ctx is cancelled or the process is interrupted. Each
// regeneration reloads the configuration. The watched set is fixed when
// watching starts. Failed regenerations are reported and watching continues.
func (r *generateRun) watch(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	changes := make(chan []string, 1)
	watcher, err := watch.NewFileWatcher(watchedFiles(cfg), watch.DefaultDelay, func(files []string) {
		select {
		case changes <- files:
		default:
			// A regeneration is already queued
		}
	}, r.logger)
	if err != nil {
		return fmt.Errorf("--watch needs a manifest, template or config file: %w", err)
	}

	// Start before the first run so edits made while it runs are not lost
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	if err := r.generate(ctx, cfg); err != nil {
		return err
	}

	stderr := r.cmd.ErrOrStderr()
	fmt.Fprint(stderr, ui.Info(fmt.Sprintf("Watching %d file(s) for changes. Press Ctrl+C to stop.", len(watcher.Files())), r.global.noColor))

	for {
		select {
		case <-ctx.Done():
			return nil
		case files := <-changes:
			fmt.Fprint(stderr, ui.Info("Regenerating after change to "+strings.Join(files, ", "), r.global.noColor))
			if err := r.once(ctx); err != nil {
				r.logger.Warn("regeneration failed", zap.Error(err))
			}
		}
	}
}

func newTypedDataManager(cfg *config.Config) *typeddata.Manager {
	return typeddata.NewManager(
		typeddata.WithDefaultListClass(cfg.TypedData.DefaultListClass),
		typeddata.WithListClasses(cfg.TypedData.ListClasses),
	)
}

// promptLists asks for the entity types and excluded classes, offering the
// current values as defaults.
func promptLists(entityTypes, excluded *string) error {
	questions := []*survey.Question{
		{
			Name: "entityTypes",
			Prompt: &survey.Input{
				Message: "Entity types (comma separated):",
				Default: *entityTypes,
			},
			Validate: survey.Required,
		},
		{
			Name: "excluded",
			Prompt: &survey.Input{
				Message: "Excluded classes (comma separated, optional):",
				Default: *excluded,
			},
		},
	}

	answers := struct {
		EntityTypes string `survey:"entityTypes"`
		Excluded    string `survey:"excluded"`
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	*entityTypes = answers.EntityTypes
	*excluded = answers.Excluded
	return nil
}

// entityTypeLister is implemented by sources that know every entity type
// up front, such as manifest-backed registries.
type entityTypeLister interface {
	EntityTypes() []registry.EntityTypeID
}

// warnUnknownEntityTypes prints a warning with suggestions for requested
// entity types the source has never heard of. It only inspects sources that
// can list their entity types, so it never adds registry lookups.
func warnUnknownEntityTypes(cmd *cobra.Command, src registry.Source, requested []string, noColor bool) {
	lister, ok := src.(entityTypeLister)
	if !ok {
		return
	}

	known := lister.EntityTypes()
	knownSet := make(map[string]struct{}, len(known))
	for _, et := range known {
		knownSet[et] = struct{}{}
	}

	for _, et := range requested {
		if et == "" {
			continue
		}
		if _, ok := knownSet[et]; ok {
			continue
		}
		fmt.Fprint(cmd.ErrOrStderr(), ui.UnknownEntityTypeWarning(et, ui.FindSimilar(et, known), noColor))
	}
}
