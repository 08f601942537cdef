// Package cmd provides the root command and CLI setup for rulemig.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gooze.dev/pkg/rulemig/internal/adapter"
	"gooze.dev/pkg/rulemig/internal/controller"
	"gooze.dev/pkg/rulemig/internal/domain"
	m "gooze.dev/pkg/rulemig/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var javaAdapter adapter.JavaFileAdapter
var reportStore adapter.ReportStore
var workflow domain.Workflow
var ui controller.UI

// excludePatterns is a root-level flag that filters files for every command.
var excludePatterns []string

// jobsFlag is the number of workers used to build the project index.
var jobsFlag int

var logPathFlag string
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Shared dependencies. The workflow is built once the logger is configured.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	javaAdapter = adapter.NewLocalJavaFileAdapter(fsAdapter)
	reportStore = adapter.NewYAMLReportStore(fsAdapter)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...          recursively scan current directory
  - ./src/...      recursively scan the src directory
  - ./a ./b        scan multiple directories`

const rootLongDescription = `rulemig migrates JUnit 4 ExternalResource rules to JUnit 5 callback
extensions. Anonymous rules are lifted into named inner classes, rule
classes and their whole superclass chain get callback interfaces, and
@Rule/@ClassRule fields become @RegisterExtension fields.

` + pathPatternsHelp

const migrateLongDescription = `Migrate ExternalResource rules under the given paths (default: ./...).

Without --write the command prints a unified diff per file and leaves the
sources untouched.

` + pathPatternsHelp

const listLongDescription = `List the rule fields and rule classes that migrate would rewrite.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rulemig",
		Short: "JUnit 4 ExternalResource to JUnit 5 extension migration tool",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger := configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
			if workflow == nil {
				workflow = domain.NewWorkflow(fsAdapter, javaAdapter, reportStore, ui, logger)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching a doublestar glob (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().IntVarP(&jobsFlag, jobsFlagName, "j", viper.GetInt(jobsConfigKey), "number of parallel workers for indexing")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(jobsFlagName), jobsConfigKey)

	cmd.PersistentFlags().StringVar(&logPathFlag, logFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFlagName), logFilenameKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
