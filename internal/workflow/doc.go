// Package workflow drives the chapter pipeline: it ingests uploaded chapter
// files from the inbox, walks each queue item through the translation,
// rendering, and publishing stages, and keeps heartbeats fresh so crashed
// runs can be reclaimed. Chapters are processed one at a time, oldest first.
package workflow
