// Package network aggregates review learning artifacts across
// repositories into a shared global knowledge set.
//
// An aggregation run scans a directory tree for known artifact files
// (review histories, self-evaluation metrics, weight vectors, reward
// matrices), averages their metrics, merges their weight sets, and
// writes global_knowledge/global_summary.json,
// adaptive_network_weights.json, and network_log.md. When the
// KNOWLEDGE_CORE_ENDPOINT env var is set the summary is also posted to
// a central collector.
package network
