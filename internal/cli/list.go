package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/reel/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	NodeID   string
	NodeType string
	Since    string
}

// ListResult holds listed video metadata. Payloads are never included.
type ListResult struct {
	Videos []store.Record `json:"videos"`
	Count  int            `json:"count"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored videos by node, node type, or age",
		Long: `List stored videos. Exactly one of --node, --type or --since selects them.

--since takes an RFC 3339 timestamp or a duration counted back from now.

Examples:
  reel list --node shot-1
  reel list --type scene --format json
  reel list --since 24h`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.NodeID, "node", "", "list videos owned by this node")
	cmd.Flags().StringVar(&opts.NodeType, "type", "", "list videos whose node has this type")
	cmd.Flags().StringVar(&opts.Since, "since", "", "list videos created at or after this time")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	selectors := 0
	for _, v := range []string{opts.NodeID, opts.NodeType, opts.Since} {
		if v != "" {
			selectors++
		}
	}
	if selectors != 1 {
		return s.usageError("exactly one of --node, --type or --since is required")
	}

	ctx := cmd.Context()
	var records []store.Record
	switch {
	case opts.NodeID != "":
		records, err = s.vault.ListByNode(ctx, opts.NodeID)
	case opts.NodeType != "":
		records, err = s.vault.ListByNodeType(ctx, opts.NodeType)
	default:
		since, perr := parseSince(opts.Since, now(opts.RootOptions))
		if perr != nil {
			return s.usageError(perr.Error())
		}
		records, err = s.vault.ListCreatedSince(ctx, since)
	}
	if err != nil {
		return s.fail("failed to list videos", err)
	}

	res := ListResult{Videos: records, Count: len(records)}
	return s.formatter.Result(res, func(w io.Writer) {
		writeRecordTable(w, records)
	})
}

func now(opts *RootOptions) time.Time {
	if opts.Clock != nil {
		return opts.Clock.Now()
	}
	return time.Now()
}

// parseSince accepts an RFC 3339 timestamp or a duration before now.
func parseSince(value string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: want an RFC 3339 time or a duration", value)
	}
	if d < 0 {
		return time.Time{}, fmt.Errorf("invalid --since %q: duration must not be negative", value)
	}
	return now.Add(-d), nil
}

func writeRecordTable(w io.Writer, records []store.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No videos")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNODE\tTYPE\tSIZE\tMIME\tCREATED")
	for _, r := range records {
		created := time.UnixMilli(r.CreatedAt).UTC().Format(time.RFC3339)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", r.ID, r.NodeID, r.NodeType, r.SizeBytes, r.MIMEType, created)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d video(s)\n", len(records))
}
