package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewUsageCommand creates the usage command.
func NewUsageCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Report stored video count and total size",
		Long: `Report how many videos are stored and the total size of their payloads.

Example:
  reel usage --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsage(rootOpts, cmd)
		},
	}
}

func runUsage(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	u, err := s.vault.Usage(cmd.Context())
	if err != nil {
		return s.fail("failed to compute usage", err)
	}

	return s.formatter.Result(u, func(w io.Writer) {
		fmt.Fprintf(w, "%d video(s), %d bytes\n", u.Count, u.TotalSizeBytes)
	})
}
