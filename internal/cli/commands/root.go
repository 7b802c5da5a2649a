package commands

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fmacia/subclass-ide-helper/internal/cli/config"
	"github.com/fmacia/subclass-ide-helper/internal/logging"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// globalOptions holds the persistent flags shared by all subcommands
type globalOptions struct {
	configFile string
	source     string
	manifest   string
	driver     string
	dsn        string
	verbose    bool
	noColor    bool

	// fs is where stub files are written; nil means the OS filesystem
	fs afero.Fs
}

// flagKeys maps flag names to configuration keys
var flagKeys = map[string]string{
	"source":           "source.kind",
	"manifest":         "source.manifest",
	"driver":           "source.driver",
	"dsn":              "source.dsn",
	"result-file":      "result_file",
	"excluded-classes": "excluded_classes",
	"template":         "template",
}

// loadConfig reads configuration with changed flags taking precedence over
// environment, config file and defaults.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.New()
	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}
	return config.Load(v, o.configFile)
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func (o *globalOptions) logger(cmd *cobra.Command) *zap.Logger {
	return logging.NewWithWriter(cmd.ErrOrStderr(), o.verbose)
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	return newRootCommand(&globalOptions{})
}

func newRootCommand(opts *globalOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sih",
		Short: "Generate IDE helper stubs for subclassed bundles",
		Long: color.CyanString(`sih - Subclass IDE Helper

Reads entity bundle and field metadata exported from a site and writes a PHP
stub file that declares an @property annotation for every configurable field
of every bundle backed by its own class, so IDEs can autocomplete them.

Metadata sources:
  • manifest  YAML or JSON export (default: sih-metadata.yml)
  • database  snapshot tables in PostgreSQL or SQLite`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable color output if requested
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Config file (default: ./sih.yml)")
	flags.StringVar(&opts.source, "source", "", "Metadata source: manifest or database")
	flags.StringVar(&opts.manifest, "manifest", "", "Metadata manifest file (YAML or JSON)")
	flags.StringVar(&opts.driver, "driver", "", "Database driver: pgx, postgres or sqlite3")
	flags.StringVar(&opts.dsn, "dsn", "", "Database DSN for the database source")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every skipped bundle and excluded class")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newGenerateCommand(opts))
	rootCmd.AddCommand(newInspectCommand(opts))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the sih version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			printVersionLine(cmd.OutOrStdout(), "sih version: ", Version)
			printVersionLine(cmd.OutOrStdout(), "Git commit: ", GitCommit)
			printVersionLine(cmd.OutOrStdout(), "Build date: ", BuildDate)
			printVersionLine(cmd.OutOrStdout(), "Go version: ", goVer)
		},
	}
}

func printVersionLine(w io.Writer, title, value string) {
	color.New(color.FgCyan, color.Bold).Fprint(w, title)
	color.New(color.FgWhite).Fprintln(w, value)
}

// reportedError marks an error the command has already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// reported wraps err so Execute does not print it a second time.
func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// Execute runs the root command
func Execute() error {
	return execute(NewRootCommand())
}

func execute(rootCmd *cobra.Command) error {
	if err := rootCmd.Execute(); err != nil {
		var printed *reportedError
		if !errors.As(err, &printed) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
