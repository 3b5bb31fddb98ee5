package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	Out string
}

// GetResult describes a loaded video.
type GetResult struct {
	ID        string `json:"id"`
	Handle    string `json:"handle"`
	MIMEType  string `json:"mime_type"`
	SizeBytes int    `json:"size_bytes"`
	Out       string `json:"out,omitempty"`
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Load a stored video",
		Long: `Load the video stored under id and optionally write its bytes to a file.

Exit codes:
  0 - Video found
  1 - No video stored under id, or the read failed
  2 - Command error (database unavailable, etc.)

Examples:
  reel get intro --out ./intro.mp4
  reel get intro --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the video bytes to this file")

	return cmd
}

func runGet(opts *GetOptions, id string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	handle, found, err := s.vault.Get(ctx, id)
	if err != nil {
		return s.fail("failed to load video", err)
	}
	if !found {
		msg := fmt.Sprintf("no video stored under %q", id)
		_ = s.formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitFailure, msg)
	}
	defer s.vault.Release(handle)

	data, mimeType, err := s.vault.Registry().Resolve(ctx, handle)
	if err != nil {
		return s.fail("failed to load video", err)
	}

	res := GetResult{ID: id, Handle: handle, MIMEType: mimeType, SizeBytes: len(data)}
	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
			return s.fail("failed to write video", err)
		}
		res.Out = opts.Out
	}

	return s.formatter.Result(res, func(w io.Writer) {
		if res.Out != "" {
			fmt.Fprintf(w, "Wrote %d bytes (%s) to %s\n", res.SizeBytes, res.MIMEType, res.Out)
			return
		}
		fmt.Fprintf(w, "%s: %d bytes (%s)\n", res.ID, res.SizeBytes, res.MIMEType)
	})
}
