// Package services provides shared plumbing for external-system clients:
// sentinel error markers with stage/operation wrapping, and context helpers
// that carry queue item and stage identity into logs.
package services
