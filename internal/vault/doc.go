// Package vault is the video blob store consumed by application code.
//
// A Vault owns three collaborators:
//   - a store.Handle, opened lazily on the first operation
//   - a source.Normalizer that turns data:, blob: and remote references
//     into one payload before anything is written
//   - an ephemeral.Registry that publishes stored payloads as blob: handles
//     for playback
//
// Every operation is a single call into the SQLite engine. There is no
// caching layer between the Vault and the store, and no automatic retry.
//
// # Errors
//
// Failures are returned as *Error carrying an ErrorCode. A Get that finds
// nothing is not a failure: it reports found=false with a nil error.
package vault
