// Package gitops wraps the git binary for publishing the rendered library and
// podcast feed to a static-site repository.
package gitops
