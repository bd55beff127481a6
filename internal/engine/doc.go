// Package engine orchestrates the code search pipeline.
//
// An Engine owns exactly one vector index, one scanner, and a reference
// to one embedding provider; none of these are shared across engines.
// IndexCodebase runs the batch pipeline (scan, embed, build, snapshot)
// and Search answers ranked nearest-neighbor queries, recording one
// latency sample per call toward the 500ms budget.
//
// Construction is explicit and fallible. There is no lazy first-use
// initialization: a misconfigured provider or dimension fails in New,
// not with a hidden latency spike on the first query.
package engine
