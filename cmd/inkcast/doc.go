// Command inkcast is the CLI for the chapter pipeline: one-shot translation,
// queue management, podcast tooling, and the foreground daemon.
package main
