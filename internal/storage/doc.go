// Package storage is the boundary between the upload pipeline and the hosted
// object store.
//
// # Overview
//
// ObjectStore is the minimal surface the pipeline consumes: List (used by the
// bucket preflight), Upload (overwrite-if-exists write), PublicURL (pure,
// deterministic from the path) and ListFolder (last-resort discovery for
// callers outside the pipeline).
//
// # Error kinds
//
// Stores report heterogeneous error shapes. Adapters in this package wrap
// every failure in *Error carrying a closed Kind computed once at the
// boundary, so the rest of the pipeline only switches on KindOf(err):
//
//   - KindBucketNotFound: the destination bucket is absent (fatal).
//   - KindNetwork:        transient connectivity trouble (queue and retry later).
//   - KindOther:          anything else.
//
// Errors from foreign stores that are not *Error are classified by message
// pattern in Classify, the only place such heuristics live.
//
// Implementations
//
//   - S3Store:       aws-sdk-go-v2 against any S3-compatible endpoint.
//   - MemoryStore:   process-local buckets for tests and offline development.
//   - ObservedStore: decorator exporting Prometheus metrics.
package storage
