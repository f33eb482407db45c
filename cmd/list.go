package cmd

import (
	"github.com/spf13/cobra"

	"github.com/EvanKepner/mutatest/internal/controller"
	"github.com/EvanKepner/mutatest/internal/domain"
)

var listNoCovFlag bool

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List source files and mutation target counts",
		Long:  listLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := runConfigFromViper()
			cfg.IgnoreCoverage = cfg.IgnoreCoverage || listNoCovFlag

			workflow := domain.NewWorkflow(
				fsAdapter,
				goFileAdapter,
				coverageAdapter,
				cacheAdapter,
				testAdapter,
				reportStore,
				nil,
			)

			targets, err := workflow.ListTargets(ctx, domain.RunArgs{
				Paths:  parsePaths(args),
				Config: cfg,
			})
			if err != nil {
				return err
			}

			return controller.NewSimpleUI(cmd, false).DisplayTargets(ctx, targets)
		},
	}

	cmd.Flags().BoolVar(&listNoCovFlag, "nocov", false, "ignore the coverage profile when listing targets")

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
