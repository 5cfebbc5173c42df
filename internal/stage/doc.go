// Package stage defines the contract between the workflow manager and the
// pipeline stages (translation, rendering, publishing).
package stage
