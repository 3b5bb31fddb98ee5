package vault

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/reel/internal/ephemeral"
	"github.com/roach88/reel/internal/logging"
	"github.com/roach88/reel/internal/source"
	"github.com/roach88/reel/internal/store"
)

// DefaultFetchTimeout bounds remote fetches when no fetcher is supplied.
const DefaultFetchTimeout = 2 * time.Minute

// Clock supplies write timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Usage aggregates all live records.
type Usage = store.Usage

// Vault stores normalized video payloads keyed by id and owning node.
type Vault struct {
	handle     *store.Handle
	registry   *ephemeral.Registry
	normalizer *source.Normalizer
	clock      Clock
	log        *logrus.Entry
	metrics    *Metrics

	idMu         sync.Mutex
	lastIDMillis int64
}

// Option configures a Vault.
type Option func(*Vault)

// WithClock overrides the clock used for created_at and generated ids.
func WithClock(c Clock) Option {
	return func(v *Vault) { v.clock = c }
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *logrus.Logger) Option {
	return func(v *Vault) { v.log = logrus.NewEntry(l).WithField("component", "vault") }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(v *Vault) { v.metrics = m }
}

// WithFetcher replaces the remote fetcher.
func WithFetcher(f source.Fetcher) Option {
	return func(v *Vault) { v.normalizer.Remote = f }
}

// New returns a Vault over handle. The handle is not opened until the first
// operation. A nil registry gets a fresh one.
func New(handle *store.Handle, registry *ephemeral.Registry, opts ...Option) *Vault {
	if registry == nil {
		registry = ephemeral.NewRegistry()
	}
	v := &Vault{
		handle:     handle,
		registry:   registry,
		normalizer: source.NewNormalizer(registry, source.NewHTTPFetcher(DefaultFetchTimeout)),
		clock:      systemClock{},
		log:        logrus.NewEntry(logging.Discard()),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Registry returns the registry that Get publishes handles into.
func (v *Vault) Registry() *ephemeral.Registry {
	return v.registry
}

// Close releases the database handle.
func (v *Vault) Close() error {
	return v.handle.Close()
}

// EnsureReady opens the underlying store if it is not open yet. Safe to call
// concurrently; all callers share one open.
func (v *Vault) EnsureReady(ctx context.Context) error {
	_, err := v.ready(ctx, "ensure ready")
	return err
}

func (v *Vault) ready(ctx context.Context, op string) (*store.Store, error) {
	st, err := v.handle.Ready(ctx)
	if err != nil {
		v.log.WithError(err).WithField("path", v.handle.Path()).Error("open video store failed")
		return nil, &Error{Code: ErrCodeStorageUnavailable, Op: op, Err: err}
	}
	return st, nil
}

// Put resolves sourceRef into a payload and upserts it under id.
//
// The reference is fully resolved before the write starts, so a failed
// decode or fetch leaves the store untouched. A record already stored under
// id is replaced as a whole.
func (v *Vault) Put(ctx context.Context, id, nodeID, nodeType, sourceRef string, extra map[string]any) error {
	const op = "put"
	if id == "" {
		return &Error{Code: ErrCodeInvalidInput, Op: op, Err: fmt.Errorf("id must not be empty")}
	}
	if err := store.ValidateExtra(extra); err != nil {
		return &Error{Code: ErrCodeInvalidInput, Op: op, ID: id, Err: err}
	}

	st, err := v.ready(ctx, op)
	if err != nil {
		return err
	}

	ref := source.Classify(sourceRef)
	log := v.log.WithFields(logrus.Fields{
		"id":          id,
		"node_id":     nodeID,
		"source_kind": ref.Kind.String(),
	})

	payload, err := v.normalizer.Normalize(ctx, ref)
	if err != nil {
		v.metrics.observeIngest(ref.Kind, 0, err)
		log.WithError(err).Warn("resolve video source failed")
		return &Error{Code: sourceErrorCode(ref.Kind), Op: op, ID: id, Err: err}
	}

	rec := store.Record{
		ID:              id,
		NodeID:          normalizeKey(nodeID),
		NodeType:        normalizeKey(nodeType),
		Payload:         payload.Data,
		MIMEType:        payload.MIMEType,
		CreatedAt:       v.clock.Now().UnixMilli(),
		SourceReference: sourceRef,
		Extra:           extra,
	}
	if err := st.Upsert(ctx, rec); err != nil {
		v.metrics.observeIngest(ref.Kind, 0, err)
		log.WithError(err).Error("store video failed")
		return &Error{Code: ErrCodeWriteFailed, Op: op, ID: id, Err: err}
	}

	v.metrics.observeIngest(ref.Kind, payload.Size(), nil)
	log.WithFields(logrus.Fields{
		"size_bytes": payload.Size(),
		"mime_type":  payload.MIMEType,
	}).Info("stored video")
	return nil
}

// sourceErrorCode maps a normalization failure to its taxonomy entry. Only
// inline payloads are decoded in-process; the other shapes fail while fetching.
func sourceErrorCode(kind source.Kind) ErrorCode {
	if kind == source.KindInline {
		return ErrCodeDecode
	}
	return ErrCodeFetchFailed
}

// Get publishes the payload stored under id and returns its blob: handle.
// found is false, with a nil error, when no record has that id.
//
// The registry holds a copy of the payload until the handle is passed to
// Release.
func (v *Vault) Get(ctx context.Context, id string) (ref string, found bool, err error) {
	rec, err := v.GetRecord(ctx, id)
	if err != nil {
		return "", false, err
	}
	if rec == nil {
		return "", false, nil
	}

	ref = v.registry.Publish(rec.Payload, rec.MIMEType)
	v.log.WithFields(logrus.Fields{
		"id":         id,
		"size_bytes": rec.SizeBytes,
		"mime_type":  rec.MIMEType,
	}).Debug("loaded video")
	return ref, true, nil
}

// GetRecord returns the full stored record, or nil when id is absent.
func (v *Vault) GetRecord(ctx context.Context, id string) (*store.Record, error) {
	const op = "get"
	st, err := v.ready(ctx, op)
	if err != nil {
		return nil, err
	}

	rec, err := st.Get(ctx, id)
	if err != nil {
		v.log.WithError(err).WithField("id", id).Error("read video failed")
		return nil, &Error{Code: ErrCodeReadFailed, Op: op, ID: id, Err: err}
	}
	if rec == nil {
		v.logMiss(ctx, st, id)
	}
	return rec, nil
}

// logMiss lists the stored ids at debug level to help track down a wrong key.
func (v *Vault) logMiss(ctx context.Context, st *store.Store, id string) {
	if !v.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	ids, err := st.ListIDs(ctx)
	if err != nil {
		v.log.WithError(err).WithField("id", id).Debug("video not found; listing stored ids failed")
		return
	}
	v.log.WithFields(logrus.Fields{"id": id, "stored_ids": ids}).Debug("video not found")
}

// ListByNode returns every record owned by nodeID. An unopenable store
// yields an empty slice rather than an error; a failed query does not.
func (v *Vault) ListByNode(ctx context.Context, nodeID string) ([]store.Record, error) {
	st, err := v.handle.Ready(ctx)
	if err != nil {
		v.log.WithError(err).WithField("node_id", nodeID).Warn("video store unavailable; listing nothing")
		return []store.Record{}, nil
	}

	records, err := st.ListByNode(ctx, normalizeKey(nodeID))
	if err != nil {
		return nil, &Error{Code: ErrCodeReadFailed, Op: "list by node", ID: nodeID, Err: err}
	}
	v.log.WithFields(logrus.Fields{"node_id": nodeID, "count": len(records)}).Debug("listed videos")
	return records, nil
}

// ListByNodeType returns every record tagged with nodeType.
func (v *Vault) ListByNodeType(ctx context.Context, nodeType string) ([]store.Record, error) {
	const op = "list by node type"
	st, err := v.ready(ctx, op)
	if err != nil {
		return nil, err
	}
	records, err := st.ListByNodeType(ctx, normalizeKey(nodeType))
	if err != nil {
		return nil, &Error{Code: ErrCodeReadFailed, Op: op, ID: nodeType, Err: err}
	}
	return records, nil
}

// ListCreatedSince returns records written at or after since.
func (v *Vault) ListCreatedSince(ctx context.Context, since time.Time) ([]store.Record, error) {
	const op = "list created since"
	st, err := v.ready(ctx, op)
	if err != nil {
		return nil, err
	}
	records, err := st.ListCreatedSince(ctx, since.UnixMilli())
	if err != nil {
		return nil, &Error{Code: ErrCodeReadFailed, Op: op, Err: err}
	}
	return records, nil
}

// Delete removes the record under id. Deleting an absent id succeeds.
func (v *Vault) Delete(ctx context.Context, id string) error {
	const op = "delete"
	st, err := v.ready(ctx, op)
	if err != nil {
		return err
	}
	if err := st.Delete(ctx, id); err != nil {
		v.log.WithError(err).WithField("id", id).Error("delete video failed")
		return &Error{Code: ErrCodeWriteFailed, Op: op, ID: id, Err: err}
	}
	v.metrics.observeDelete()
	v.log.WithField("id", id).Info("deleted video")
	return nil
}

// DeleteByNode deletes every record owned by nodeID, one id at a time.
//
// The deletes are independent. A failure on one id does not stop the rest;
// the last failure is returned once every id has been attempted.
func (v *Vault) DeleteByNode(ctx context.Context, nodeID string) error {
	records, err := v.ListByNode(ctx, nodeID)
	if err != nil {
		return err
	}

	var lastErr error
	failed := 0
	for _, rec := range records {
		if err := v.Delete(ctx, rec.ID); err != nil {
			lastErr = err
			failed++
		}
	}
	if lastErr != nil {
		v.log.WithFields(logrus.Fields{
			"node_id": nodeID,
			"failed":  failed,
			"total":   len(records),
		}).Warn("some node videos were not deleted")
	}
	return lastErr
}

// Clear removes every record.
func (v *Vault) Clear(ctx context.Context) error {
	const op = "clear"
	st, err := v.ready(ctx, op)
	if err != nil {
		return err
	}
	n, err := st.Clear(ctx)
	if err != nil {
		v.log.WithError(err).Error("clear videos failed")
		return &Error{Code: ErrCodeWriteFailed, Op: op, Err: err}
	}
	v.log.WithField("count", n).Info("cleared videos")
	return nil
}

// Usage reports the number of stored records and their total payload size.
func (v *Vault) Usage(ctx context.Context) (Usage, error) {
	const op = "usage"
	st, err := v.ready(ctx, op)
	if err != nil {
		return Usage{}, err
	}
	u, err := st.Usage(ctx)
	if err != nil {
		return Usage{}, &Error{Code: ErrCodeReadFailed, Op: op, Err: err}
	}
	return u, nil
}

// SaveVideo stores sourceRef under a generated id of the form
// "{nodeID}-{epochMillis}" and returns that id.
//
// Generated ids are strictly increasing per Vault: a call landing in the same
// millisecond as the previous one takes the next millisecond instead.
func (v *Vault) SaveVideo(ctx context.Context, nodeID, nodeType, sourceRef string, extra map[string]any) (string, error) {
	id := fmt.Sprintf("%s-%d", normalizeKey(nodeID), v.nextIDMillis())
	if err := v.Put(ctx, id, nodeID, nodeType, sourceRef, extra); err != nil {
		return "", err
	}
	return id, nil
}

// LoadNodeVideos publishes every record owned by nodeID and returns a map
// from record id to blob: handle. Each handle must be passed to Release once
// the caller is done with it.
func (v *Vault) LoadNodeVideos(ctx context.Context, nodeID string) (map[string]string, error) {
	records, err := v.ListByNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]string, len(records))
	for _, rec := range records {
		refs[rec.ID] = v.registry.Publish(rec.Payload, rec.MIMEType)
	}
	return refs, nil
}

func (v *Vault) nextIDMillis() int64 {
	ms := v.clock.Now().UnixMilli()

	v.idMu.Lock()
	defer v.idMu.Unlock()
	if ms <= v.lastIDMillis {
		ms = v.lastIDMillis + 1
	}
	v.lastIDMillis = ms
	return ms
}

// Release drops the payload copy behind a handle returned by Get or
// LoadNodeVideos. Releasing an unknown handle is a no-op.
func (v *Vault) Release(ref string) {
	v.registry.Revoke(ref)
}

// normalizeKey puts node keys in NFC so composed and decomposed spellings
// land on the same index entries.
func normalizeKey(s string) string {
	return norm.NFC.String(s)
}
