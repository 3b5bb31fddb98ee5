// Package source classifies video references and normalizes them into a
// single in-memory payload.
//
// A reference takes one of three shapes, decided by prefix alone:
//
//	data:video/webm;base64,GkXf...   KindInline, decoded in-process
//	blob:reel/4f0c...                KindEphemeral, resolved from the local registry
//	https://cdn.example.com/a.mp4    KindRemote, fetched over the network
//
// Classify runs once at the boundary; Normalizer carries the resulting
// Reference through resolution without re-inspecting the string.
package source
