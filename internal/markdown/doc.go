// Package markdown loads the posts directory: markdown files with a YAML
// front-matter header (title, date, draft) and a markdown body. It parses
// metadata, renders bodies to HTML, and synchronises the files with the post
// store, where orphaned sources are archived rather than removed.
package markdown
