// Package render produces the text a front end shows for a registration
// session: page banners derived from a snapshot, section headings and
// question prompts. Text comes from pongo2 templates that can be overridden
// from disk, and server-provided copy is reduced to plain text first.
package render
