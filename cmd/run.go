package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/EvanKepner/mutatest/internal/controller"
	"github.com/EvanKepner/mutatest/internal/domain"
	m "github.com/EvanKepner/mutatest/internal/model"
)

var runParallelFlag bool
var runLocationsFlag int
var runSeedFlag int64
var runTimeoutFlag time.Duration
var runIgnoreCoverageFlag bool
var runShowDiffsFlag bool
var runBreakOnFlags = map[string]*bool{}

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Run mutation trials",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := runConfigFromViper()

			ui := controller.NewUI(cmd, runShowDiffsFlag)
			if err := ui.Start(ctx); err != nil {
				return err
			}

			workflow := domain.NewWorkflow(
				fsAdapter,
				goFileAdapter,
				coverageAdapter,
				cacheAdapter,
				testAdapter,
				reportStore,
				ui,
			)

			reportPath := m.Path(filepath.Join(
				viper.GetString(outputFlagName),
				fmt.Sprintf("%s.yaml", time.Now().Format("20060102-150405")),
			))

			summary, err := workflow.Run(ctx, domain.RunArgs{
				Paths:      parsePaths(args),
				ReportPath: reportPath,
				TestCmd:    viper.GetStringSlice(testCommandKey),
				Config:     cfg,
			})

			ui.Close(ctx)

			if err != nil {
				return err
			}

			return ui.DisplaySummary(ctx, summary)
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&runParallelFlag, "parallel", "p", viper.GetBool(runParallelKey), "run site trials concurrently with private build caches")
	bindFlagToConfig(cmd.Flags().Lookup("parallel"), runParallelKey)

	cmd.Flags().IntVarP(&runLocationsFlag, "nlocations", "n", viper.GetInt(runLocationsKey), "number of locations to sample (0 = all)")
	bindFlagToConfig(cmd.Flags().Lookup("nlocations"), runLocationsKey)

	cmd.Flags().Int64VarP(&runSeedFlag, "rseed", "r", viper.GetInt64(runSeedKey), "random seed for sampling and operator order (0 = time-based)")
	bindFlagToConfig(cmd.Flags().Lookup("rseed"), runSeedKey)

	cmd.Flags().DurationVarP(&runTimeoutFlag, "timeout", "t", viper.GetDuration(runTimeoutKey), "per-trial timeout (0 = derived from baseline runtime)")
	bindFlagToConfig(cmd.Flags().Lookup("timeout"), runTimeoutKey)

	cmd.Flags().BoolVar(&runIgnoreCoverageFlag, "nocov", viper.GetBool(runIgnoreCoverageKey), "ignore the coverage profile when building the sample space")
	bindFlagToConfig(cmd.Flags().Lookup("nocov"), runIgnoreCoverageKey)

	cmd.Flags().BoolVar(&runShowDiffsFlag, "diffs", false, "print unified diffs for surviving mutants")

	for flag, key := range map[string]string{
		"break-on-survival": runBreakSurvivalKey,
		"break-on-detected": runBreakDetectedKey,
		"break-on-error":    runBreakErrorKey,
		"break-on-timeout":  runBreakTimeoutKey,
		"break-on-unknown":  runBreakUnknownKey,
	} {
		var value bool

		runBreakOnFlags[flag] = &value

		cmd.Flags().BoolVar(&value, flag, viper.GetBool(key), "stop further mutations at a site after this trial status")
		bindFlagToConfig(cmd.Flags().Lookup(flag), key)
	}
}
