// Package preview runs the local writing server: every post is visible,
// drafts wear a badge, and edits to the content directory re-import and
// reload the open browser tab over a websocket.
//
// The server is a development tool. It binds to one writer's machine,
// optionally behind a bcrypt password for the draft routes, and never
// serves the published site.
package preview
