// Package render writes translated chapters as HTML pages using a per-book,
// per-source, or default template.
package render
