package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/EvanKepner/mutatest/internal/controller"
	m "github.com/EvanKepner/mutatest/internal/model"
)

var viewDiffsFlag bool

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [report]",
		Short: "View a previously generated trial report",
		Long: `View a saved trial report. With no argument the newest report in the
output directory is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ui := controller.NewSimpleUI(cmd, viewDiffsFlag)

			if len(args) == 1 {
				summary, err := reportStore.LoadSummary(ctx, m.Path(args[0]))
				if err != nil {
					return err
				}

				return ui.DisplaySummary(ctx, summary)
			}

			summary, path, err := reportStore.LatestSummary(ctx, m.Path(viper.GetString(outputFlagName)))
			if err != nil {
				return err
			}

			cmd.Printf("Report: %s\n", path)

			return ui.DisplaySummary(ctx, summary)
		},
	}

	cmd.Flags().BoolVar(&viewDiffsFlag, "diffs", false, "print unified diffs for surviving mutants")

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
