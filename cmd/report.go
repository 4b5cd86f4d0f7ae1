package cmd

import (
	"github.com/spf13/cobra"

	"laravel-assembler/internal/logger"
	"laravel-assembler/internal/state"
)

// reportCmd prints a report written by `new --report` and exits non-zero when
// any task of that run failed.
var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Show the outcome of a run saved with --report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := state.LoadReport(args[0])
		if err != nil {
			return err
		}

		logger.InfoBadge(r.Project)
		for _, res := range r.Results {
			switch {
			case res.Skipped:
				logger.Skipped(res.Label, res.Message)
			case res.Succeeded:
				logger.Done(res.Label)
			default:
				logger.Failed(res.Label, res.Message)
			}
		}

		repo := r.Repository
		logger.Debug("[DEBUG] git initialized=%v github=%v branch=%q\n", repo.Initialized, repo.CreatedOnGitHub, repo.Branch)

		ok, skipped, failed := r.Summary()
		logger.Info("[INFO] %d tasks succeeded, %d skipped, %d failed\n", ok, skipped, failed)
		return r.Err()
	},
}
