package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/reel/internal/manifest"
)

// ingestFlags are shared by put and save.
type ingestFlags struct {
	NodeID   string
	NodeType string
	Source   string
	File     string
	MIMEType string
	Meta     map[string]string
}

func (f *ingestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.NodeID, "node", "", "owning node id (required)")
	cmd.Flags().StringVar(&f.NodeType, "type", "", "owning node type (required)")
	cmd.Flags().StringVar(&f.Source, "source", "", "data:, blob: or http(s) source reference")
	cmd.Flags().StringVar(&f.File, "file", "", "local video file to store")
	cmd.Flags().StringVar(&f.MIMEType, "mime", "", "MIME type for --file (default video/mp4)")
	cmd.Flags().StringToStringVar(&f.Meta, "meta", nil, "extra metadata as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("node")
	_ = cmd.MarkFlagRequired("type")
}

// entry validates the flags the same way a manifest entry is validated.
func (f *ingestFlags) entry(id string) (manifest.Entry, error) {
	e := manifest.Entry{
		ID:       id,
		NodeID:   f.NodeID,
		NodeType: f.NodeType,
		Source:   f.Source,
		File:     f.File,
		MIMEType: f.MIMEType,
	}
	switch {
	case e.Source == "" && e.File == "":
		return e, fmt.Errorf("one of --source or --file is required")
	case e.Source != "" && e.File != "":
		return e, fmt.Errorf("--source and --file are mutually exclusive")
	case e.MIMEType != "" && e.File == "":
		return e, fmt.Errorf("--mime only applies to --file")
	}
	return e, nil
}

func (f *ingestFlags) extra() map[string]any {
	if len(f.Meta) == 0 {
		return nil
	}
	extra := make(map[string]any, len(f.Meta))
	for k, v := range f.Meta {
		extra[k] = v
	}
	return extra
}

// PutResult is the output of put and save.
type PutResult struct {
	ID     string `json:"id"`
	NodeID string `json:"node_id"`
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &ingestFlags{}

	cmd := &cobra.Command{
		Use:   "put <id>",
		Short: "Store a video under an explicit id",
		Long: `Store a video under an explicit id, replacing any video already stored there.

The source is resolved completely before anything is written, so a failed
decode or download leaves the database unchanged.

Examples:
  reel put intro --node shot-1 --type shot --file ./intro.mp4
  reel put intro --node shot-1 --type shot --source https://cdn.example.com/intro.mp4
  reel put intro --node shot-1 --type shot --source "data:video/webm;base64,GkXf..." --meta prompt="rain"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(rootOpts, flags, args[0], cmd)
		},
	}
	flags.register(cmd)

	return cmd
}

func runPut(opts *RootOptions, flags *ingestFlags, id string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	e, err := flags.entry(id)
	if err != nil {
		return s.usageError(err.Error())
	}
	ref, err := e.Reference()
	if err != nil {
		return s.usageError(err.Error())
	}

	if err := s.vault.Put(cmd.Context(), id, e.NodeID, e.NodeType, ref, flags.extra()); err != nil {
		return s.fail("failed to store video", err)
	}

	res := PutResult{ID: id, NodeID: e.NodeID}
	return s.formatter.Result(res, func(w io.Writer) {
		fmt.Fprintf(w, "Stored %s\n", res.ID)
	})
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &ingestFlags{}

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Store a video under a generated id",
		Long: `Store a video under an id generated from the node id and the current time
in milliseconds ("<node>-<millis>"), and print that id.

Example:
  reel save --node shot-1 --type shot --file ./take2.mp4`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(rootOpts, flags, cmd)
		},
	}
	flags.register(cmd)

	return cmd
}

func runSave(opts *RootOptions, flags *ingestFlags, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	e, err := flags.entry("")
	if err != nil {
		return s.usageError(err.Error())
	}
	ref, err := e.Reference()
	if err != nil {
		return s.usageError(err.Error())
	}

	id, err := s.vault.SaveVideo(cmd.Context(), e.NodeID, e.NodeType, ref, flags.extra())
	if err != nil {
		return s.fail("failed to store video", err)
	}

	res := PutResult{ID: id, NodeID: e.NodeID}
	return s.formatter.Result(res, func(w io.Writer) {
		fmt.Fprintln(w, res.ID)
	})
}
