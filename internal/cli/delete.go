package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	NodeID string
}

// DeleteResult reports what a delete targeted.
type DeleteResult struct {
	ID     string `json:"id,omitempty"`
	NodeID string `json:"node_id,omitempty"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a video, or every video of a node",
		Long: `Delete the video stored under id, or with --node every video the node owns.

Deleting an id that is not stored succeeds. Node deletes attempt every video
and report the last failure, if any.

Examples:
  reel delete intro
  reel delete --node shot-1`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.NodeID, "node", "", "delete every video owned by this node")

	return cmd
}

func runDelete(opts *DeleteOptions, args []string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if (len(args) == 1) == (opts.NodeID != "") {
		return s.usageError("exactly one of <id> or --node is required")
	}

	var res DeleteResult
	if opts.NodeID != "" {
		res.NodeID = opts.NodeID
		err = s.vault.DeleteByNode(cmd.Context(), opts.NodeID)
	} else {
		res.ID = args[0]
		err = s.vault.Delete(cmd.Context(), args[0])
	}
	if err != nil {
		return s.fail("failed to delete", err)
	}

	return s.formatter.Result(res, func(w io.Writer) {
		if res.NodeID != "" {
			fmt.Fprintf(w, "Deleted videos of node %s\n", res.NodeID)
			return
		}
		fmt.Fprintf(w, "Deleted %s\n", res.ID)
	})
}

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Yes bool
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored video",
		Long: `Delete every stored video. Requires --yes.

Example:
  reel clear --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm deleting every video")

	return cmd
}

func runClear(opts *ClearOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if !opts.Yes {
		return s.usageError("refusing to clear without --yes")
	}
	if err := s.vault.Clear(cmd.Context()); err != nil {
		return s.fail("failed to clear videos", err)
	}

	return s.formatter.Result(map[string]bool{"cleared": true}, func(w io.Writer) {
		fmt.Fprintln(w, "Cleared all videos")
	})
}
