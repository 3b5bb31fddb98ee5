package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/reel/internal/manifest"
)

// ImportResult summarizes a manifest import.
type ImportResult struct {
	Entries  []manifest.Result `json:"entries"`
	Total    int               `json:"total"`
	Failures int               `json:"failures"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <manifest.yaml>",
		Short: "Store every video listed in a YAML manifest",
		Long: `Store every video listed in a YAML manifest.

Entries are ingested in order. A failed entry does not stop the rest.

Manifest format:
  entries:
    - id: intro              # optional; generated as <node>-<millis> when absent
      node_id: shot-1
      node_type: shot
      file: clips/intro.mp4  # or source: data:..., https://...
      metadata:
        prompt: rain at night

Exit codes:
  0 - Every entry stored
  1 - One or more entries failed
  2 - Command error (manifest unreadable or invalid, database unavailable)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	m, err := manifest.Load(path)
	if err != nil {
		_ = s.formatter.Error(ErrCodeUsage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load manifest", err)
	}
	s.formatter.VerboseLog("Loaded %d manifest entries from %s", len(m.Entries), path)

	if err := s.vault.EnsureReady(cmd.Context()); err != nil {
		return s.fail("failed to open database", err)
	}

	results := manifest.Import(cmd.Context(), s.vault, m, s.log)
	res := ImportResult{Entries: results, Total: len(results), Failures: manifest.Failures(results)}

	if err := s.formatter.Result(res, func(w io.Writer) {
		for _, r := range res.Entries {
			if r.Err != nil {
				fmt.Fprintf(w, "FAIL  entries[%d] %s: %s\n", r.Index, r.NodeID, r.Error)
				continue
			}
			fmt.Fprintf(w, "OK    entries[%d] %s\n", r.Index, r.ID)
		}
		fmt.Fprintf(w, "%d/%d stored\n", res.Total-res.Failures, res.Total)
	}); err != nil {
		return err
	}

	if res.Failures > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d manifest entries failed", res.Failures, res.Total))
	}
	return nil
}
