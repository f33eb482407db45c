// Package cmd provides the root command and CLI setup for mutatest.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/EvanKepner/mutatest/internal/adapter"
	m "github.com/EvanKepner/mutatest/internal/model"
)

var goFileAdapter adapter.GoFileAdapter
var fsAdapter adapter.SourceFSAdapter
var coverageAdapter adapter.CoverageAdapter
var cacheAdapter adapter.CacheAdapter
var testAdapter adapter.TestRunnerAdapter
var reportStore adapter.ReportStore

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// excludeFiles is a root-level flag that drops files from the target scan.
var excludeFiles []string

// categoryCodes restricts the scan to the given operator categories.
var categoryCodes []string

// verboseFlag turns on debug logging for the run.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	goFileAdapter = adapter.NewLocalGoFileAdapter()
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	coverageAdapter = adapter.NewLocalCoverageAdapter(fsAdapter)
	cacheAdapter = adapter.NewLocalCacheAdapter()
	testAdapter = adapter.NewLocalTestRunnerAdapter()
	reportStore = adapter.NewLocalReportStore()
}

const pathArgumentsHelp = `Paths may be files or directories:
  - .              scan the current directory recursively
  - ./pkg          scan one directory recursively
  - ./pkg/calc.go  scan a single file`

const rootLongDescription = `Mutatest assesses test suite quality by introducing small defects
(mutations) into your source and checking that the suite catches them.
Mutations that survive the suite point at weakly tested code.

` + pathArgumentsHelp

const runLongDescription = `Run mutation trials for the given paths (default: current directory).

Each sampled location is mutated with randomly ordered substitutions and
the test command is executed against the mutated build. Results are
reported per trial and summarized at the end.

` + pathArgumentsHelp

const listLongDescription = `List source files and the number of mutation targets in each.

` + pathArgumentsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mutatest",
		Short: "Go mutation testing tool",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for mutation trial reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludeFiles, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude source file from mutation (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringSliceVarP(&categoryCodes, categoriesFlagName, "c", viper.GetStringSlice(categoriesConfigKey), "restrict mutations to category codes, see 'mutatest operators'")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(categoriesFlagName), categoriesConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
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
	if len(args) == 0 {
		return []m.Path{"."}
	}

	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

func parseExcludes(values []string) []m.Path {
	paths := make([]m.Path, 0, len(values))
	for _, v := range values {
		paths = append(paths, m.Path(v))
	}

	return paths
}

// runConfigFromViper assembles the run policy from flags, config and env.
// A zero seed is replaced with a time-derived one so unseeded runs still
// shuffle.
func runConfigFromViper() m.RunConfig {
	seed := viper.GetInt64(runSeedKey)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return m.RunConfig{
		NLocations:      viper.GetInt(runLocationsKey),
		ExcludeFiles:    parseExcludes(viper.GetStringSlice(excludeConfigKey)),
		FilterCodes:     viper.GetStringSlice(categoriesConfigKey),
		RandomSeed:      seed,
		BreakOnSurvival: viper.GetBool(runBreakSurvivalKey),
		BreakOnDetected: viper.GetBool(runBreakDetectedKey),
		BreakOnError:    viper.GetBool(runBreakErrorKey),
		BreakOnTimeout:  viper.GetBool(runBreakTimeoutKey),
		BreakOnUnknown:  viper.GetBool(runBreakUnknownKey),
		IgnoreCoverage:  viper.GetBool(runIgnoreCoverageKey),
		CoverageProfile: m.Path(viper.GetString(coverageProfileKey)),
		MaxRuntime:      viper.GetDuration(runTimeoutKey),
		Parallel:        viper.GetBool(runParallelKey),
	}
}
