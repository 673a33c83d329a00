// Package analysis derives the critical path and bottleneck overlays for a
// pipeline graph.
//
// Two notions of "critical path" are offered side by side:
//
//   - [CriticalPath] is tag-based: it returns every node touched by an edge
//     whose type is critical, in first-seen order. This is what the overlay
//     highlights.
//   - [LongestPath] is the duration-weighted longest chain through the DAG,
//     the classical critical-path-method result.
//
// The two can disagree. On the sample pipeline the tagged path includes all
// three test jobs while the longest chain runs through Integration Tests only.
//
// [Bottlenecks] ranks nodes with a known duration, longest first. [Summarize]
// bundles all of the above with basic totals for reports.
package analysis
