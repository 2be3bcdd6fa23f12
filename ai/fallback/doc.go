// Package fallback provides a deterministic bag-of-words embedder used when
// no embedding model is reachable, and a wrapper that degrades a primary
// embedder to it per call.
//
// The encoder builds a batch-local vocabulary (capped at Dim entries),
// weights tokens by term frequency × inverse batch frequency, and
// L2-normalizes the result. Vectors are stable for a fixed batch but the
// vocabulary drifts between batches, so a query vector and an index vector
// may disagree on what a dimension means. This is a known approximation of
// the fallback path and is kept as-is; changing it to a corpus-global
// vocabulary would alter ranking stability guarantees.
package fallback
