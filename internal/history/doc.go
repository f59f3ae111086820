// Package history maintains a chat-history archive: records fetched
// from a source are merged into a JSON document keyed by message ID,
// never overwriting entries already present, with reply references
// resolved against the merged set.
package history
