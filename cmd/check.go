package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"amalgam.dev/pkg/amalgam/internal/domain"
)

var checkDiffFlag bool

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that the generated files are up to date",
		Long:  checkLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := loadPlan(cmd.Context())
			if err != nil {
				return err
			}

			return workflow.Check(cmd.Context(), domain.CheckArgs{
				Plan:     plan,
				Parallel: viper.GetInt(buildParallelKey),
				ShowDiff: checkDiffFlag,
			})
		},
	}

	cmd.Flags().BoolVar(&checkDiffFlag, diffFlagName, false, "show a unified diff for every stale artifact")

	return cmd
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
