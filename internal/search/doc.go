// Package search maintains a Badger-backed full-text index over posts.
//
// Terms from the title, tags, and body are written as posting keys
// (idx:<term>:<post-id>) next to a per-post document record (doc:<post-id>).
// Queries AND their terms together over prefix scans and return scored,
// snippeted results. Published posts only by default; drafts opt in.
package search
