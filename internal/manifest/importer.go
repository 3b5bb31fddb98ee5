package manifest

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Ingester is the subset of the vault an import needs.
type Ingester interface {
	Put(ctx context.Context, id, nodeID, nodeType, sourceRef string, extra map[string]any) error
	SaveVideo(ctx context.Context, nodeID, nodeType, sourceRef string, extra map[string]any) (string, error)
}

// Result reports the outcome of one entry.
type Result struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	NodeID string `json:"node_id"`
	Err    error  `json:"-"`
	Error  string `json:"error,omitempty"`
}

// Import ingests every entry in order. A failed entry does not stop the
// rest; each outcome is reported in the returned slice.
//
// An entry whose generated id matches one already stored in this run has
// overwritten that video and is reported as failed.
func Import(ctx context.Context, ing Ingester, m *Manifest, log logrus.FieldLogger) []Result {
	results := make([]Result, 0, len(m.Entries))
	stored := make(map[string]int, len(m.Entries))
	for i, e := range m.Entries {
		if err := ctx.Err(); err != nil {
			results = append(results, failed(i, e, err))
			continue
		}

		res := importEntry(ctx, ing, i, e)
		if res.Err == nil {
			if prev, dup := stored[res.ID]; dup && e.ID == "" {
				id := res.ID
				res = failed(i, e, fmt.Errorf("generated id %q overwrote entries[%d]", id, prev))
				res.ID = id
			} else {
				stored[res.ID] = i
			}
		}
		entryLog := log.WithFields(logrus.Fields{"index": i, "node_id": e.NodeID, "id": res.ID})
		if res.Err != nil {
			entryLog.WithError(res.Err).Warn("manifest entry failed")
		} else {
			entryLog.Debug("manifest entry stored")
		}
		results = append(results, res)
	}
	return results
}

func importEntry(ctx context.Context, ing Ingester, i int, e Entry) Result {
	ref, err := e.Reference()
	if err != nil {
		return failed(i, e, err)
	}

	if e.ID == "" {
		id, err := ing.SaveVideo(ctx, e.NodeID, e.NodeType, ref, e.Metadata)
		if err != nil {
			return failed(i, e, err)
		}
		return Result{Index: i, ID: id, NodeID: e.NodeID}
	}

	if err := ing.Put(ctx, e.ID, e.NodeID, e.NodeType, ref, e.Metadata); err != nil {
		return failed(i, e, err)
	}
	return Result{Index: i, ID: e.ID, NodeID: e.NodeID}
}

func failed(i int, e Entry, err error) Result {
	return Result{Index: i, ID: e.ID, NodeID: e.NodeID, Err: err, Error: err.Error()}
}

// Failures counts the results that carry an error.
func Failures(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
