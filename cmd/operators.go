package cmd

import (
	"github.com/spf13/cobra"

	"github.com/EvanKepner/mutatest/internal/controller"
	"github.com/EvanKepner/mutatest/internal/domain"
)

// operatorsCmd represents the operators command.
var operatorsCmd = newOperatorsCmd()

func newOperatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operators",
		Short: "Show the mutation operator catalog",
		Long: `Show every mutation operator group with its 2-letter category code.
Codes are passed to --categories to restrict a run.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return controller.NewSimpleUI(cmd, false).DisplayOperators(cmd.Context(), domain.Catalog())
		},
	}
}

func init() {
	rootCmd.AddCommand(operatorsCmd)
}
