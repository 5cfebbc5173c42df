// Package queue persists chapter pipeline state in SQLite. Each uploaded
// chapter becomes one item that advances through translation, rendering, and
// publishing; the daemon recovers interrupted work by rolling processing
// statuses back to the start of their stage.
package queue
